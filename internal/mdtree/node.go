// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mdtree models a markdown document as two nested trees: a section
// tree built from headings, and under every section a block tree built from
// line indentation. It parses documents into those trees, moves block
// subtrees out of them, and serializes them back to lines.
//
// Only line-level structure is modeled. Tables, inline emphasis and code
// fences are ordinary lines.
package mdtree

// Node is the capability shared by Block and Section: an ordered list of
// children that serializes to indented text lines, depth-first pre-order.
type Node interface {
	Stringify(indentation string) []string
}

// node holds the ordered children of a tree node. Slice order is source
// order; there are no separate indices.
type node[C any] struct {
	Children []C
}

// AppendChild adds child after the existing children.
func (n *node[C]) AppendChild(child C) {
	n.Children = append(n.Children, child)
}

var (
	_ Node = (*Block)(nil)
	_ Node = (*Section)(nil)
)
