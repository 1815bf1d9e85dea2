// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import "slices"

// StripSurroundingNewlines drops the leading and trailing runs of blank
// blocks from blocks. Interior blanks are kept. A blank block that carries
// nested lines is content, not spacing, and is never dropped.
func StripSurroundingNewlines(blocks []*Block) []*Block {
	start, end := 0, len(blocks)
	for start < end && isSpacer(blocks[start]) {
		start++
	}
	for end > start && isSpacer(blocks[end-1]) {
		end--
	}
	return slices.Clone(blocks[start:end])
}

// AddSurroundingNewlines wraps blocks in exactly one blank block on each
// side. An empty sequence becomes a single blank block.
func AddSurroundingNewlines(blocks []*Block) []*Block {
	if len(blocks) == 0 {
		return []*Block{NewBlankBlock()}
	}
	out := make([]*Block, 0, len(blocks)+2)
	out = append(out, NewBlankBlock())
	out = append(out, blocks...)
	return append(out, NewBlankBlock())
}

// NormalizeNewlines leaves exactly one blank block before and after the
// non-blank run of blocks. Applying it twice gives the same result as once.
func NormalizeNewlines(blocks []*Block) []*Block {
	return AddSurroundingNewlines(StripSurroundingNewlines(blocks))
}

// NormalizeNewlinesRecursively normalizes the content of every section
// below root. The content of root itself is left as it is.
func NormalizeNewlinesRecursively(root *Section) {
	for _, child := range root.Children {
		child.Content.Children = NormalizeNewlines(child.Content.Children)
		NormalizeNewlinesRecursively(child)
	}
}

// AddNewlinesToSection makes sure that whatever is appended after section
// starts on a fresh paragraph: it finds the section rendered last under
// section and, if the last top-level block of its content is not blank,
// adds a blank block. Lines nested under that block are not looked at.
// Empty content is left alone.
func AddNewlinesToSection(section *Section) {
	content := section.lastDescendant().Content
	n := len(content.Children)
	if n == 0 {
		return
	}
	if !content.Children[n-1].IsBlank() {
		content.AppendChild(NewBlankBlock())
	}
}

func isSpacer(b *Block) bool {
	return b.IsBlank() && len(b.Children) == 0
}
