package richtext

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDoc = `{
  "type": "doc",
  "content": [
    {
      "type": "paragraph",
      "content": [
        {"text": "asdf", "type": "text", "marks": [{"type": "bold"}]},
        {"text": " asdf therthy", "type": "text"}
      ]
    },
    {
      "type": "paragraph",
      "content": [
        {"text": "ty34 ", "type": "text", "marks": [{"type": "underline"}]},
        {"text": "srfg", "type": "text"}
      ]
    }
  ]
}`

func mustParse(t *testing.T, raw string) *Node {
	t.Helper()
	node, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return node
}

func text(value string) *Node {
	return &Node{Type: "text", Text: value}
}

func paragraph(children ...*Node) *Node {
	return &Node{Type: "paragraph", Content: children}
}

func doc(children ...*Node) *Node {
	return &Node{Type: "doc", Content: children}
}

func TestExtractTextSampleDocument(t *testing.T) {
	got := ExtractText(mustParse(t, sampleDoc))
	if got != "asdf asdf therthy ty34 srfg" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExtractTextSingleLevelBlocks(t *testing.T) {
	root := doc(paragraph(text("first")), paragraph(text("second")), paragraph(text("third")))
	if got := ExtractText(root); got != "first second third" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExtractTextSeparatesNestedSiblings(t *testing.T) {
	root := doc(
		&Node{Type: "bulletList", Content: []*Node{
			{Type: "listItem", Content: []*Node{paragraph(text("one"))}},
			{Type: "listItem", Content: []*Node{paragraph(text("two"))}},
		}},
		&Node{Type: "blockquote", Content: []*Node{paragraph(text("quoted   text"))}},
	)
	got := ExtractText(root)
	if got != "one two quoted text" {
		t.Fatalf("unexpected excerpt %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}

func TestExtractTextJoinsInlineRunsOfOneParagraph(t *testing.T) {
	// Inline runs split by marks carry their own spacing; only the final run
	// of the paragraph gets a separator.
	root := doc(paragraph(text("Hello "), text("bold"), text(" world")))
	if got := ExtractText(root); got != "Hello bold world" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExtractTextEmptyInputs(t *testing.T) {
	if got := ExtractText(nil); got != "" {
		t.Fatalf("expected empty string for nil root, got %q", got)
	}
	if got := ExtractText(doc()); got != "" {
		t.Fatalf("expected empty string for empty doc, got %q", got)
	}
	if got := ExtractText(doc(paragraph(), nil, paragraph(text("   ")))); got != "" {
		t.Fatalf("expected whitespace-only doc to trim to empty, got %q", got)
	}
}

func TestExtractTextDoesNotMutateInput(t *testing.T) {
	root := mustParse(t, sampleDoc)
	before := mustParse(t, sampleDoc)
	_ = ExtractText(root)
	if !reflect.DeepEqual(root, before) {
		t.Fatal("expected document to be left untouched")
	}
}

func TestExtractTextDeepDocument(t *testing.T) {
	const depth = 200000
	root := text("leaf")
	for i := 0; i < depth; i++ {
		root = &Node{Type: "blockquote", Content: []*Node{root}}
	}
	if got := ExtractText(root); got != "leaf" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"  a \t\n b   c ",
		"single\nnewline kept",
		"",
		ExtractText(mustParse(t, sampleDoc)),
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
	if got := Normalize("single\nnewline kept"); got != "single\nnewline kept" {
		t.Fatalf("expected lone newline to survive, got %q", got)
	}
}

func TestExtractTextCollapsesUnicodeWhitespace(t *testing.T) {
	root := doc(
		paragraph(text("hello\u00a0")),
		paragraph(text("world\u00a0\u00a0again")),
	)
	if got := ExtractText(root); got != "hello world again" {
		t.Fatalf("unexpected excerpt %q", got)
	}

	cases := map[string]string{
		"a\u2003\u3000b":        "a b",
		"\ufeff lead":           "lead",
		"trail\u202f":           "trail",
		"x\v\vy":                "x y",
		"keep\u00a0single nbsp": "keep\u00a0single nbsp",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExcerptTruncates(t *testing.T) {
	root := doc(paragraph(text("hello wonderful world")))
	if got := Excerpt(root, 0); got != "hello wonderful world" {
		t.Fatalf("unexpected untruncated excerpt %q", got)
	}
	if got := Excerpt(root, 7); got != "hello…" {
		t.Fatalf("unexpected truncated excerpt %q", got)
	}
	if got := Excerpt(root, 100); got != "hello wonderful world" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := Truncate("héllo wörld", 6); got != "héllo…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("abc", 1); got != "…" {
		t.Fatalf("unexpected single-rune truncation %q", got)
	}
}

func TestParseNullAndInvalid(t *testing.T) {
	node, err := Parse([]byte(" null "))
	if err != nil || node != nil {
		t.Fatalf("expected nil node for null, got %v %v", node, err)
	}
	if _, err := Parse([]byte(`{"type":`)); err == nil {
		t.Fatal("expected decode error")
	}
}
