// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocksOf(lines ...string) []*Block {
	out := make([]*Block, len(lines))
	for i, l := range lines {
		out[i] = NewBlock(l)
	}
	return out
}

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{""}},
		{"only blanks", []string{"", " ", ""}, []string{""}},
		{"no blanks", []string{"a", "b"}, []string{"", "a", "b", ""}},
		{"many surrounding blanks", []string{"", "", "a", "", "", "b", "\t", ""}, []string{"", "a", "", "", "b", ""}},
		{"already normalized", []string{"", "a", ""}, []string{"", "a", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := NormalizeNewlines(blocksOf(tt.in...))
			assert.Equal(t, tt.want, texts(once))

			twice := NormalizeNewlines(once)
			assert.Equal(t, texts(once), texts(twice), "normalization must be idempotent")
		})
	}
}

func TestNormalizeNewlines_EmptyInputIsOneBlank(t *testing.T) {
	got := NormalizeNewlines(nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsBlank())
}

func TestStripSurroundingNewlines_KeepsBlankWithNestedLines(t *testing.T) {
	root := ParseBlocks([]string{"- a", "", "\t- nested under blank", ""}, "\t")

	stripped := StripSurroundingNewlines(root.Children)

	require.Len(t, stripped, 2)
	assert.Equal(t, "- a", stripped[0].Text)
	assert.True(t, stripped[1].IsBlank())
	assert.Len(t, stripped[1].Children, 1)
}

func TestStripSurroundingNewlines_DoesNotAliasInput(t *testing.T) {
	in := blocksOf("", "a", "")
	out := StripSurroundingNewlines(in)
	out[0] = NewBlock("changed")
	assert.Equal(t, "a", in[1].Text)
}

func TestNormalizeNewlinesRecursively(t *testing.T) {
	doc := "top\n\n\n# A\n- a\n## B\n\n\n- b\n\n# C"
	root := ParseDocument(doc, ParseOptions{Indentation: "\t"})

	NormalizeNewlinesRecursively(root)

	want := "top\n\n\n# A\n\n- a\n\n## B\n\n- b\n\n# C\n"
	assert.Equal(t, want, Render(root, "\t"))

	NormalizeNewlinesRecursively(root)
	assert.Equal(t, want, Render(root, "\t"), "second pass changes nothing")
}

func TestAddNewlinesToSection(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "appends blank after last content line",
			doc:  "# A\n- a",
			want: "# A\n- a\n",
		},
		{
			name: "follows the last child chain",
			doc:  "# A\n- a\n## B\n### C\n- c",
			want: "# A\n- a\n## B\n### C\n- c\n",
		},
		{
			name: "already separated",
			doc:  "# A\n- a\n",
			want: "# A\n- a\n",
		},
		{
			name: "empty content is left alone",
			doc:  "# A\n## B",
			want: "# A\n## B",
		},
		{
			name: "nested lines are rendered before the blank",
			doc:  "# A\n- a\n\t- b",
			want: "# A\n- a\n\t- b\n",
		},
		{
			name: "last top-level block decides",
			doc:  "# A\n- a\n\t",
			want: "# A\n- a\n\t\n",
		},
		{
			name: "blank top-level block with nested lines counts as separator",
			doc:  "# A\n- a\n\n\t- b",
			want: "# A\n- a\n\n\t- b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := ParseDocument(tt.doc, ParseOptions{Indentation: "\t"})
			AddNewlinesToSection(root.Children[0])
			assert.Equal(t, tt.want, Render(root, "\t"))
		})
	}
}
