// Package richtext reads TipTap/ProseMirror JSON documents stored as comment
// content and flattens them into plain-text excerpts.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is one element of a rich-text document tree.
type Node struct {
	Type    string         `json:"type,omitempty"`
	Text    string         `json:"text,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Mark is an inline annotation such as bold or underline.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Parse decodes a stored document. Empty input and JSON null yield a nil node.
func Parse(raw []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var node Node
	if err := json.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("decode rich text: %w", err)
	}
	return &node, nil
}
