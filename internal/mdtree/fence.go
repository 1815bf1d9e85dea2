// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// fencedLines returns the indices of lines that are the body of a fenced
// code block, as goldmark sees the document.
func fencedLines(lines []string) map[int]bool {
	src := []byte(strings.Join(lines, "\n"))

	// starts[i] is the byte offset where line i begins.
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}
	lineAt := func(pos int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > pos }) - 1
	}

	fenced := make(map[int]bool)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		segments := block.Lines()
		for i := 0; i < segments.Len(); i++ {
			fenced[lineAt(segments.At(i).Start)] = true
		}
		return ast.WalkSkipChildren, nil
	})
	return fenced
}
