// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package placeholder

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)
	ctx := Context{
		Now:        now,
		DateFormat: "%Y/%m",
		SourcePath: "projects/garden.md",
		Heading:    "Spring",
	}

	tests := []struct {
		name string
		in   string
		ctx  Context
		want string
	}{
		{"no tokens", "archive", ctx, "archive"},
		{"file name", "{{sourceFileName}} (archive)", ctx, "garden (archive)"},
		{"file path", "archive/{{sourceFilePath}}", ctx, "archive/projects/garden"},
		{"date with layout", "log {{date}}", ctx, "log 2026/03"},
		{"default layout", "{{date}}", Context{Now: now}, "2026-03-04"},
		{"heading", "(from {{heading}})", ctx, "(from Spring)"},
		{"heading falls back to file name", "(from {{heading}})", Context{SourcePath: "inbox.md"}, "(from inbox)"},
		{"unknown tokens stay", "{{unknown}} {{sourceFileName}}", ctx, "{{unknown}} garden"},
		{"repeated tokens", "{{sourceFileName}}-{{sourceFileName}}", ctx, "garden-garden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in, tt.ctx))
		})
	}
}

func TestFormatDate_ISOWeek(t *testing.T) {
	// 2027-01-01 falls in ISO week 53 of 2026.
	day := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-W53", FormatDate("%G-W%V", day))
	assert.Equal(t, "2027-01-01", FormatDate("", day))
}

func TestPattern(t *testing.T) {
	now := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)
	inbox := Context{SourcePath: "notes/inbox.md"}
	anyFile := Context{}

	tests := []struct {
		name  string
		tmpl  string
		ctx   Context
		match []string
		miss  []string
	}{
		{
			name:  "literal",
			tmpl:  "archive (old).md",
			ctx:   anyFile,
			match: []string{"archive (old).md"},
			miss:  []string{"archive old.md", "x/archive (old).md"},
		},
		{
			name:  "file name of a given source",
			tmpl:  "{{sourceFileName}} (archive)",
			ctx:   inbox,
			match: []string{"inbox (archive)"},
			miss:  []string{"outbox (archive)", "inbox (archive) (archive)x"},
		},
		{
			name:  "file name of any source",
			tmpl:  "archive/{{sourceFileName}}",
			ctx:   anyFile,
			match: []string{"archive/inbox", "archive/a b"},
			miss:  []string{"archive/x/y", "archive/"},
		},
		{
			name:  "file path",
			tmpl:  "archive/{{sourceFilePath}}",
			ctx:   inbox,
			match: []string{"archive/notes/inbox"},
			miss:  []string{"archive/inbox"},
		},
		{
			name:  "any date",
			tmpl:  "log {{date}}",
			ctx:   Context{DateFormat: "%Y-W%V"},
			match: []string{"log 2026-W10", "log 2019-W01"},
			miss:  []string{"log 2026-10", "log today"},
		},
		{
			name:  "resolved value always matches",
			tmpl:  "{{sourceFileName}} {{date}}",
			ctx:   Context{Now: now, SourcePath: "inbox.md", DateFormat: "%d %B %Y"},
			match: []string{Resolve("{{sourceFileName}} {{date}}", Context{Now: now, SourcePath: "inbox.md", DateFormat: "%d %B %Y"})},
			miss:  []string{"inbox 4 March 2026"},
		},
		{
			name:  "unknown tokens are literal",
			tmpl:  "{{unknown}}",
			ctx:   anyFile,
			match: []string{"{{unknown}}"},
			miss:  []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Pattern(tt.tmpl, tt.ctx)
			require.NoError(t, err)
			for _, s := range tt.match {
				assert.True(t, re.MatchString(s), "%q should match %s", s, re)
			}
			for _, s := range tt.miss {
				assert.False(t, re.MatchString(s), "%q should not match %s", s, re)
			}
		})
	}
}

func TestDatePattern(t *testing.T) {
	day := time.Date(2026, time.December, 31, 23, 5, 9, 0, time.UTC)
	layouts := []string{"", "%Y-%m-%d", "%G-W%V", "%A %d %b", "%F %T", "%y%j", "100%%"}
	for _, layout := range layouts {
		t.Run(layout, func(t *testing.T) {
			re := regexp.MustCompile("^" + DatePattern(layout) + "$")
			assert.True(t, re.MatchString(FormatDate(layout, day)), "%q from %q", FormatDate(layout, day), layout)
		})
	}
}
