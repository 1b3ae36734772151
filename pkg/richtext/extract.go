package richtext

import (
	"regexp"
	"strings"
)

// whitespaceClass is the ECMAScript \s set: ASCII whitespace, NBSP, the
// Unicode space separators, line/paragraph separators and the BOM.
const whitespaceClass = `\t\n\v\f\r \x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var whitespaceRun = regexp.MustCompile(`[` + whitespaceClass + `]{2,}`)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xa0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

type frame struct {
	node *Node
	// spaced marks the last child of a parent; a separator is written before it.
	spaced bool
}

// ExtractText flattens the document into a single whitespace-normalized line.
//
// Traversal uses an explicit stack so document depth never grows the call
// stack. Children are pushed in reverse to pop in document order, and the
// last child of every node is flagged so sibling subtrees are separated.
// The input tree is not modified.
func ExtractText(root *Node) string {
	if root == nil {
		return ""
	}
	var out strings.Builder
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}
		if top.spaced {
			out.WriteByte(' ')
		}
		out.WriteString(top.node.Text)

		children := top.node.Content
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], spaced: i == len(children)-1})
		}
	}
	return Normalize(out.String())
}

// Normalize collapses runs of two or more whitespace characters into one
// space and trims both ends. A lone whitespace character is kept as is.
// Whitespace includes NBSP and the other Unicode spaces rich-text editors emit.
func Normalize(text string) string {
	return strings.TrimFunc(whitespaceRun.ReplaceAllString(text, " "), isSpace)
}

// Excerpt returns ExtractText truncated to at most limit runes, ending with an
// ellipsis when shortened. A non-positive limit disables truncation.
func Excerpt(root *Node, limit int) string {
	return Truncate(ExtractText(root), limit)
}

// Truncate shortens already-extracted text the same way Excerpt does.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:limit-1]), " ") + "…"
}
