// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import "strings"

// Block is one markdown line (a list item or plain text) with its nested
// sub-lines as children. A root block has no text of its own; it only
// groups a forest of lines.
type Block struct {
	node[*Block]

	// Text is the line without its structural indentation.
	Text string

	root bool
}

// NewBlock returns a block for a single line of text.
func NewBlock(text string) *Block {
	return &Block{Text: text}
}

// NewBlankBlock returns a block used purely as vertical spacing.
func NewBlankBlock() *Block {
	return &Block{}
}

// NewRootBlock returns a textless container block.
func NewRootBlock(children ...*Block) *Block {
	b := &Block{root: true}
	b.Children = append(b.Children, children...)
	return b
}

// IsRoot reports whether b is a textless container.
func (b *Block) IsRoot() bool {
	return b.root
}

// IsBlank reports whether b is a spacing line: its text is empty once
// surrounding whitespace is trimmed.
func (b *Block) IsBlank() bool {
	return strings.TrimSpace(b.Text) == ""
}

// Stringify renders b and its descendants, one line per block. Depth comes
// from nesting alone, so a subtree moved to another tree re-indents
// consistently with its new position.
func (b *Block) Stringify(indentation string) []string {
	return b.appendLines(nil, indentation, 0)
}

func (b *Block) appendLines(lines []string, indentation string, depth int) []string {
	childDepth := depth
	if !b.root {
		lines = append(lines, strings.Repeat(indentation, depth)+b.Text)
		childDepth++
	}
	for _, child := range b.Children {
		lines = child.appendLines(lines, indentation, childDepth)
	}
	return lines
}
