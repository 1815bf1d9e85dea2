// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import (
	"regexp"
	"strings"
)

// headingPattern matches an ATX heading: one to six '#' followed by either
// the end of the line or a single separator and the heading text.
var headingPattern = regexp.MustCompile(`^(#{1,6})(?:([ \t])(.*))?$`)

// ParseOptions controls how a document is split into sections and blocks.
type ParseOptions struct {
	// Indentation is the literal unit that marks one nesting level,
	// a tab or a run of spaces.
	Indentation string

	// SkipFencedCode keeps heading-looking lines inside fenced code blocks
	// as plain lines.
	SkipFencedCode bool
}

// ParseDocument splits content on newlines and parses it into a section
// tree. Render is its inverse.
func ParseDocument(content string, opts ParseOptions) *Section {
	return ParseSections(strings.Split(content, "\n"), opts)
}

// Render serializes a section tree back to document text.
func Render(root *Section, indentation string) string {
	return strings.Join(root.Stringify(indentation), "\n")
}

// ParseSections builds the heading tree of lines. A heading of level L
// closes every open section of level L or deeper and nests under the
// nearest shallower one, so skipped levels never produce placeholder
// sections. Lines between headings become the Content of the section they
// follow.
func ParseSections(lines []string, opts ParseOptions) *Section {
	var fenced map[int]bool
	if opts.SkipFencedCode {
		fenced = fencedLines(lines)
	}

	root := NewRootSection()
	stack := []*Section{root}
	var pending []string

	flush := func() {
		stack[len(stack)-1].Content = ParseBlocks(pending, opts.Indentation)
		pending = nil
	}

	for i, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil || fenced[i] {
			pending = append(pending, line)
			continue
		}

		flush()
		level := len(m[1])
		for len(stack) > 1 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}

		section := &Section{
			Heading:   m[3],
			Level:     level,
			Content:   NewRootBlock(),
			separator: m[2],
		}
		stack[len(stack)-1].AppendChild(section)
		stack = append(stack, section)
	}
	flush()

	return root
}

// ParseBlocks builds the indentation tree of lines under a root block.
// A line's depth is the number of times indentation repeats at its start;
// whatever whitespace is left over stays part of the line's text. Blank
// lines become blank blocks at the depth their own indentation gives them.
func ParseBlocks(lines []string, indentation string) *Block {
	type open struct {
		depth int
		block *Block
	}

	root := NewRootBlock()
	stack := []open{{depth: -1, block: root}}

	for _, line := range lines {
		depth, text := SplitOnIndentation(line, indentation)
		for len(stack) > 1 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		b := NewBlock(text)
		stack[len(stack)-1].block.AppendChild(b)
		stack = append(stack, open{depth: depth, block: b})
	}

	return root
}

// SplitOnIndentation returns how many whole indentation units prefix line
// and the text after them. An empty unit never matches.
func SplitOnIndentation(line, indentation string) (int, string) {
	if indentation == "" {
		return 0, line
	}
	depth := 0
	for strings.HasPrefix(line, indentation) {
		line = line[len(indentation):]
		depth++
	}
	return depth, line
}
