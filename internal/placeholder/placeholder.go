// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package placeholder resolves the {{...}} tokens allowed in archive file
// names and task metadata.
package placeholder

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// Tokens recognized by Resolve.
const (
	Date           = "{{date}}"
	SourceFileName = "{{sourceFileName}}"
	SourceFilePath = "{{sourceFilePath}}"
	Heading        = "{{heading}}"
)

// DefaultDateFormat is used when Context.DateFormat is empty.
const DefaultDateFormat = "%Y-%m-%d"

// Context supplies the values substituted for tokens.
type Context struct {
	Now time.Time

	// DateFormat is the strftime layout for {{date}}.
	DateFormat string

	// SourcePath is the vault-relative, slash-separated path of the file
	// tasks are archived from.
	SourcePath string

	// Heading is the closest heading above the task. {{heading}} falls back
	// to the source file name when it is empty.
	Heading string
}

// Resolve replaces every known token in s.
func Resolve(s string, c Context) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return strings.NewReplacer(
		Date, FormatDate(c.DateFormat, c.Now),
		SourceFileName, c.fileName(),
		SourceFilePath, c.filePath(),
		Heading, c.heading(),
	).Replace(s)
}

// Pattern returns an anchored regular expression matching every string
// Resolve produces from s with c, whatever c.Now is. When c.SourcePath is
// empty the file name, path and heading tokens match any text.
func Pattern(s string, c Context) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for s != "" {
		i := strings.Index(s, "{{")
		if i < 0 {
			b.WriteString(regexp.QuoteMeta(s))
			break
		}
		b.WriteString(regexp.QuoteMeta(s[:i]))
		s = s[i:]

		token, expr := c.tokenPattern(s)
		if token == "" {
			b.WriteString(regexp.QuoteMeta("{{"))
			s = s[2:]
			continue
		}
		b.WriteString(expr)
		s = s[len(token):]
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// DatePattern returns a regular expression matching any date rendered with
// the strftime layout.
func DatePattern(layout string) string {
	if layout == "" {
		layout = DefaultDateFormat
	}
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' || i+1 == len(layout) {
			b.WriteString(regexp.QuoteMeta(layout[i : i+1]))
			continue
		}
		i++
		if expr, ok := directivePatterns[layout[i]]; ok {
			b.WriteString(expr)
		} else {
			// Padding flags and unknown directives.
			b.WriteString(`.+?`)
			if strings.IndexByte("-_0^#", layout[i]) >= 0 && i+1 < len(layout) {
				i++
			}
		}
	}
	return b.String()
}

var directivePatterns = map[byte]string{
	'Y': `\d{4}`, 'G': `\d{4}`,
	'C': `\d{2}`, 'y': `\d{2}`, 'g': `\d{2}`,
	'm': `\d{2}`, 'd': `\d{2}`, 'H': `\d{2}`, 'I': `\d{2}`,
	'M': `\d{2}`, 'S': `\d{2}`, 'U': `\d{2}`, 'V': `\d{2}`, 'W': `\d{2}`,
	'j': `\d{3}`,
	'e': ` ?\d{1,2}`, 'k': ` ?\d{1,2}`, 'l': ` ?\d{1,2}`,
	'u': `\d`, 'w': `\d`,
	's': `\d+`,
	'a': `\pL+`, 'A': `\pL+`, 'b': `\pL+`, 'B': `\pL+`, 'h': `\pL+`,
	'p': `\pL+`, 'P': `\pL+`, 'Z': `\pL+`,
	'z': `[+-]\d{4}`,
	'F': `\d{4}-\d{2}-\d{2}`,
	'D': `\d{2}/\d{2}/\d{2}`,
	'T': `\d{2}:\d{2}:\d{2}`,
	'R': `\d{2}:\d{2}`,
	'%': `%`,
	'n': `\n`,
	't': `\t`,
}

// tokenPattern returns the token s starts with and the expression it
// matches, or empty strings when s starts with no known token.
func (c Context) tokenPattern(s string) (token, expr string) {
	free := c.SourcePath == ""
	switch {
	case strings.HasPrefix(s, Date):
		return Date, DatePattern(c.DateFormat)
	case strings.HasPrefix(s, SourceFileName):
		if free {
			return SourceFileName, `[^/]+`
		}
		return SourceFileName, regexp.QuoteMeta(c.fileName())
	case strings.HasPrefix(s, SourceFilePath):
		if free {
			return SourceFilePath, `.+`
		}
		return SourceFilePath, regexp.QuoteMeta(c.filePath())
	case strings.HasPrefix(s, Heading):
		if free && strings.TrimSpace(c.Heading) == "" {
			return Heading, `.+`
		}
		return Heading, regexp.QuoteMeta(c.heading())
	}
	return "", ""
}

// FormatDate renders t with a strftime layout, using DefaultDateFormat
// when layout is empty.
func FormatDate(layout string, t time.Time) string {
	if layout == "" {
		layout = DefaultDateFormat
	}
	return strftime.Format(layout, t)
}

func (c Context) heading() string {
	if h := strings.TrimSpace(c.Heading); h != "" {
		return h
	}
	return c.fileName()
}

func (c Context) filePath() string {
	return strings.TrimSuffix(c.SourcePath, path.Ext(c.SourcePath))
}

func (c Context) fileName() string {
	base := path.Base(c.SourcePath)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
