// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rule

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/task-archiver/internal/mdtree"
	"github.com/pdiddy/task-archiver/pkg/types"
)

func matches(t *testing.T, c *Compiled, text string) bool {
	t.Helper()
	ok, err := c.Filter.BlockFilter(mdtree.NewBlock(text))
	require.NoError(t, err)
	return ok
}

func TestCompile_StatusFilter(t *testing.T) {
	tests := []struct {
		name     string
		statuses string
		text     string
		want     bool
	}{
		{"x matches x", "x", "- [x] done", true},
		{"x ignores unchecked", "x", "- [ ] open", false},
		{"x ignores other glyph", "x", "- [>] moved", false},
		{"set matches any member", ">-", "- [-] cancelled", true},
		{"set matches first member", ">-", "* [>] deferred", true},
		{"star bullet", "x", "* [x] done", true},
		{"plus bullet", "x", "+ [x] done", true},
		{"ordered dot", "x", "12. [x] done", true},
		{"ordered paren", "x", "3) [x] done", true},
		{"leftover indentation", "x", "  - [x] done", true},
		{"plain text", "x", "[x] not a list item", false},
		{"no space after bullet", "x", "-[x] nope", false},
		{"regex metacharacter glyph", "?.", "- [?] question", true},
		{"dot is literal", "?.", "- [a] other", false},
		{"empty set matches x", "", "- [x] done", true},
		{"empty set matches any glyph", "", "- [/] half", true},
		{"empty set ignores unchecked", "", "- [ ] open", false},
		{"empty set ignores plain line", "", "just text", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(types.Rule{Statuses: tt.statuses}, 0, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, matches(t, c, tt.text))
		})
	}
}

func TestCompile_TaskPattern(t *testing.T) {
	c, err := Compile(types.Rule{Statuses: "x", TaskPattern: `#work\b`}, 0, Options{})
	require.NoError(t, err)

	assert.True(t, matches(t, c, "- [x] ship it #work"))
	assert.False(t, matches(t, c, "- [x] groceries #home"))
	assert.False(t, matches(t, c, "- [ ] ship it #work"))
}

func TestDedupeStatuses(t *testing.T) {
	assert.Equal(t, "x>-", DedupeStatuses("xx>->x-"))
	assert.Equal(t, "", DedupeStatuses(""))
	assert.Equal(t, "✓x", DedupeStatuses("✓x✓"))

	c, err := Compile(types.Rule{Statuses: "xxx"}, 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, "x", c.Statuses)
}

func TestAppliesTo(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"no patterns match everything", nil, "any/file.md", true},
		{"blank patterns are ignored", []string{"  ", ""}, "any/file.md", true},
		{"any pattern may match", []string{"^projects/", "tasks"}, "daily/tasks.md", true},
		{"no pattern matches", []string{"^projects/"}, "daily/2026-01-01.md", false},
		{"lookahead", []string{`^(?!archive/).*\.md$`}, "notes/a.md", true},
		{"lookahead excludes", []string{`^(?!archive/).*\.md$`}, "archive/a.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(types.Rule{PathPatterns: tt.patterns}, 0, Options{})
			require.NoError(t, err)
			got, err := c.AppliesTo(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_InvalidPatterns(t *testing.T) {
	_, err := Compile(types.Rule{PathPatterns: []string{"valid", "(unclosed"}}, 0, Options{})
	require.ErrorIs(t, err, ErrInvalidPattern)
	assert.Contains(t, err.Error(), "path_patterns")

	_, err = Compile(types.Rule{TaskPattern: "[z-a]"}, 0, Options{})
	require.ErrorIs(t, err, ErrInvalidPattern)
	assert.Contains(t, err.Error(), "task_pattern")
}

func TestMatchTimeoutPropagates(t *testing.T) {
	old := MatchTimeout
	MatchTimeout = 5 * time.Millisecond
	t.Cleanup(func() { MatchTimeout = old })

	c, err := Compile(types.Rule{Statuses: "x", TaskPattern: `^(\w+\s?)*$`}, 0, Options{})
	require.NoError(t, err)

	text := "- [x] " + strings.Repeat("word ", 30) + "!"
	_, err = c.Filter.BlockFilter(mdtree.NewBlock(text))
	assert.Error(t, err)
}

func TestSectionFilter(t *testing.T) {
	c, err := Compile(types.Rule{}, 0, Options{
		ArchiveHeading:   "Archived",
		ExcludedHeadings: []string{"Someday", " "},
	})
	require.NoError(t, err)

	filter := c.Filter.SectionFilter
	require.NotNil(t, filter)

	for heading, want := range map[string]bool{
		"Archived": false,
		"Someday":  false,
		"Today":    true,
	} {
		ok, err := filter(mdtree.NewSection(heading, 2))
		require.NoError(t, err)
		assert.Equal(t, want, ok, heading)
	}
}

func TestCompileAll(t *testing.T) {
	cfg := types.DefaultConfig()

	compiled, err := CompileAll(cfg)
	require.NoError(t, err)
	require.Len(t, compiled, 1)
	assert.Equal(t, DefaultRuleIndex, compiled[0].Index)
	assert.Equal(t, "x", compiled[0].Statuses)

	cfg.ArchiveAllCheckedTaskTypes = true
	compiled, err = CompileAll(cfg)
	require.NoError(t, err)
	assert.Equal(t, "", compiled[0].Statuses)
	assert.True(t, matches(t, compiled[0], "- [>] deferred"))

	cfg.Rules = []types.Rule{{Statuses: "x"}, {Statuses: "-", PathPatterns: []string{"("}}}
	_, err = CompileAll(cfg)
	require.ErrorIs(t, err, ErrInvalidPattern)
	assert.Contains(t, err.Error(), "rule 1")
}
