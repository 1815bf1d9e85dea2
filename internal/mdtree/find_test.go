// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSection(t *testing.T) {
	root := ParseDocument("# A\n## Archived\n# B\n## Archived", ParseOptions{Indentation: "\t"})

	found := FindSection(root, HeadingMatcher("Archived"))
	require.NotNil(t, found)
	assert.Same(t, root.Children[0].Children[0], found, "pre-order returns the first match")

	assert.Same(t, root, FindSection(root, func(s *Section) bool { return true }))
	assert.Nil(t, FindSection(root, HeadingMatcher("Missing")))
}

func TestHeadingMatcher(t *testing.T) {
	match := HeadingMatcher(" Archived (old) ")

	assert.True(t, match(NewSection("Archived (old)", 2)))
	assert.True(t, match(NewSection("  Archived (old)  ", 2)))
	assert.False(t, match(NewSection("Not Archived (old)", 2)))
	assert.False(t, match(NewSection("Archived old", 2)), "pattern characters are literal")
	assert.False(t, HeadingMatcher("")(NewRootSection()), "the root never matches")
}

func TestFindBlock(t *testing.T) {
	root := ParseBlocks([]string{"- a", "\t- target", "- target"}, "\t")

	found := FindBlock(root, func(b *Block) bool { return b.Text == "- target" })
	require.NotNil(t, found)
	assert.Same(t, root.Children[0].Children[0], found)
}

func TestStringify_RootContributesNoLine(t *testing.T) {
	parent := NewBlock("- parent")
	parent.AppendChild(NewBlock("- child"))
	root := NewRootBlock(parent, NewBlock("- sibling"))

	assert.Equal(t, []string{"- parent", "  - child", "- sibling"}, root.Stringify("  "))
	assert.Equal(t, []string{"- parent", "\t- child"}, parent.Stringify("\t"))
}

func TestSection_AppendChildKeepsOrder(t *testing.T) {
	root := NewRootSection()
	root.AppendChild(NewSection("one", 1))
	root.AppendChild(NewSection("two", 1))
	root.Children[0].Content.AppendChild(NewBlock("text"))

	assert.Equal(t, []string{"# one", "text", "# two"}, root.Stringify("\t"))
}
