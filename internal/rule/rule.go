// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rule compiles archive rules into the predicates the extraction
// engine runs: which task lines match, which sections are scanned, and which
// files a rule applies to.
//
// Configured patterns are compiled with regexp2 in ECMAScript mode so that
// patterns written for the original JavaScript host keep their meaning, and
// every evaluation runs under a timeout. A timeout surfaces as an error from
// the predicate, which fails the whole file.
package rule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/pdiddy/task-archiver/internal/mdtree"
	"github.com/pdiddy/task-archiver/pkg/types"
)

// ErrInvalidPattern is wrapped by errors for configured regular expressions
// that do not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// MatchTimeout bounds a single evaluation of a compiled pattern.
var MatchTimeout = 250 * time.Millisecond

// DefaultRuleIndex identifies the implicit rule used when none are configured.
const DefaultRuleIndex = -1

// anyChecked is the glyph class used when a rule lists no statuses: every
// checkbox that is not empty.
const anyChecked = `[^ \]]`

// Options carries the settings shared by every rule.
type Options struct {
	// ArchiveHeading names the archive section, which is never scanned.
	ArchiveHeading string

	// ExcludedHeadings name further sections that are never scanned.
	ExcludedHeadings []string
}

// Compiled is a rule ready to run.
type Compiled struct {
	Rule types.Rule

	// Index is the rule's position in the configuration, or DefaultRuleIndex.
	Index int

	// Statuses is the deduplicated glyph set.
	Statuses string

	// Filter selects task blocks and the sections searched for them.
	Filter mdtree.TreeFilter

	task  *regexp2.Regexp
	extra *regexp2.Regexp
	paths []*regexp2.Regexp
}

// Compile turns r into predicates. Path and task patterns that do not
// compile yield an error wrapping ErrInvalidPattern.
func Compile(r types.Rule, index int, opts Options) (*Compiled, error) {
	c := &Compiled{
		Rule:     r,
		Index:    index,
		Statuses: DedupeStatuses(r.Statuses),
	}

	var err error
	if c.task, err = CompilePattern(taskPattern(c.Statuses)); err != nil {
		return nil, err
	}
	if r.TaskPattern != "" {
		if c.extra, err = CompilePattern(r.TaskPattern); err != nil {
			return nil, fmt.Errorf("task_pattern: %w", err)
		}
	}
	for _, p := range r.PathPatterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := CompilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("path_patterns: %w", err)
		}
		c.paths = append(c.paths, re)
	}

	c.Filter = mdtree.TreeFilter{
		BlockFilter:   c.matchBlock,
		SectionFilter: sectionFilter(opts),
	}
	return c, nil
}

// CompileAll compiles the configured rules, or the implicit default rule
// when none are configured.
func CompileAll(cfg types.Config) ([]*Compiled, error) {
	opts := Options{
		ArchiveHeading:   cfg.ArchiveHeading,
		ExcludedHeadings: cfg.ExcludedHeadings,
	}
	if len(cfg.Rules) == 0 {
		c, err := Compile(DefaultRule(cfg), DefaultRuleIndex, opts)
		if err != nil {
			return nil, fmt.Errorf("default rule: %w", err)
		}
		return []*Compiled{c}, nil
	}

	compiled := make([]*Compiled, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		c, err := Compile(r, i, opts)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// DefaultRule is the rule applied when the configuration lists none: done
// tasks marked "x", or every checked task when ArchiveAllCheckedTaskTypes is
// set, archived according to the global destination settings.
func DefaultRule(cfg types.Config) types.Rule {
	statuses := "x"
	if cfg.ArchiveAllCheckedTaskTypes {
		statuses = ""
	}
	return types.Rule{
		Statuses:              statuses,
		ArchiveToSeparateFile: cfg.ArchiveToSeparateFile,
		ArchiveFileName:       cfg.DefaultArchiveFileName,
		DateFormat:            cfg.DateFormat,
	}
}

// CompilePattern compiles a user-supplied regular expression with
// ECMAScript semantics and the package match timeout.
func CompilePattern(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// DedupeStatuses removes repeated glyphs, keeping first occurrences in order.
func DedupeStatuses(statuses string) string {
	seen := make(map[rune]bool)
	var b strings.Builder
	for _, r := range statuses {
		if seen[r] {
			continue
		}
		seen[r] = true
		b.WriteRune(r)
	}
	return b.String()
}

// AppliesTo reports whether the rule covers the file at the vault-relative
// path. A rule without path patterns covers every file.
func (c *Compiled) AppliesTo(path string) (bool, error) {
	if len(c.paths) == 0 {
		return true, nil
	}
	for _, re := range c.paths {
		ok, err := re.MatchString(path)
		if err != nil {
			return false, fmt.Errorf("matching path %q against %q: %w", path, re.String(), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (c *Compiled) matchBlock(b *mdtree.Block) (bool, error) {
	ok, err := c.task.MatchString(b.Text)
	if err != nil {
		return false, fmt.Errorf("matching task %q: %w", b.Text, err)
	}
	if !ok || c.extra == nil {
		return ok, nil
	}
	ok, err = c.extra.MatchString(b.Text)
	if err != nil {
		return false, fmt.Errorf("matching task %q against %q: %w", b.Text, c.extra.String(), err)
	}
	return ok, nil
}

// taskPattern matches a list item whose checkbox holds one of statuses:
// "- [x]", "* [>]", "1. [-]" and so on.
func taskPattern(statuses string) string {
	glyph := anyChecked
	if statuses != "" {
		alts := make([]string, 0, len(statuses))
		for _, r := range statuses {
			alts = append(alts, regexp2.Escape(string(r)))
		}
		glyph = "(?:" + strings.Join(alts, "|") + ")"
	}
	return `^[ \t]*(?:[-*+]|\d+[.)])[ \t]+\[` + glyph + `\]`
}

func sectionFilter(opts Options) mdtree.SectionFilter {
	var excluded []func(*mdtree.Section) bool
	if strings.TrimSpace(opts.ArchiveHeading) != "" {
		excluded = append(excluded, mdtree.HeadingMatcher(opts.ArchiveHeading))
	}
	for _, h := range opts.ExcludedHeadings {
		if strings.TrimSpace(h) != "" {
			excluded = append(excluded, mdtree.HeadingMatcher(h))
		}
	}
	return func(s *mdtree.Section) (bool, error) {
		for _, match := range excluded {
			if match(s) {
				return false, nil
			}
		}
		return true, nil
	}
}
