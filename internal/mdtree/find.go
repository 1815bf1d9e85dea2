// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import (
	"regexp"
	"strings"
)

// FindSection returns the first section, root included, that satisfies
// match in depth-first pre-order, or nil.
func FindSection(root *Section, match func(*Section) bool) *Section {
	if match(root) {
		return root
	}
	for _, child := range root.Children {
		if found := FindSection(child, match); found != nil {
			return found
		}
	}
	return nil
}

// FindBlock returns the first block, root included, that satisfies match
// in depth-first pre-order, or nil.
func FindBlock(root *Block, match func(*Block) bool) *Block {
	if match(root) {
		return root
	}
	for _, child := range root.Children {
		if found := FindBlock(child, match); found != nil {
			return found
		}
	}
	return nil
}

// HeadingMatcher matches sections whose heading is heading, ignoring
// surrounding whitespace. The document root never matches.
func HeadingMatcher(heading string) func(*Section) bool {
	pattern := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(strings.TrimSpace(heading)) + `\s*$`)
	return func(s *Section) bool {
		return !s.IsRoot() && pattern.MatchString(s.Heading)
	}
}
