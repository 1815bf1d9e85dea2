// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import "strings"

// Section is a heading-delimited region of a document. Content holds the
// lines directly under the heading, before the first child heading; child
// sections follow in document order. The document root has level 0 and no
// heading.
type Section struct {
	node[*Section]

	Heading string
	Level   int
	Content *Block

	// separator is the whitespace between the heading marker and the text,
	// kept so headings round-trip byte for byte.
	separator string
}

// NewRootSection returns an empty document root.
func NewRootSection() *Section {
	return &Section{Content: NewRootBlock()}
}

// NewSection returns an empty section for a heading of the given level.
func NewSection(heading string, level int) *Section {
	return &Section{
		Heading:   heading,
		Level:     level,
		Content:   NewRootBlock(),
		separator: " ",
	}
}

// IsRoot reports whether s is the document root.
func (s *Section) IsRoot() bool {
	return s.Level == 0
}

// HeadingLine renders the markdown heading line of s.
func (s *Section) HeadingLine() string {
	sep := s.separator
	if sep == "" && s.Heading != "" {
		sep = " "
	}
	return strings.Repeat("#", s.Level) + sep + s.Heading
}

// Stringify renders the heading line, the section content, then every
// child section.
func (s *Section) Stringify(indentation string) []string {
	var lines []string
	if !s.IsRoot() {
		lines = append(lines, s.HeadingLine())
	}
	lines = append(lines, s.Content.Stringify(indentation)...)
	for _, child := range s.Children {
		lines = append(lines, child.Stringify(indentation)...)
	}
	return lines
}

// lastDescendant follows the last-child chain to the section rendered last.
func (s *Section) lastDescendant() *Section {
	last := s
	for len(last.Children) > 0 {
		last = last.Children[len(last.Children)-1]
	}
	return last
}
