// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archiver moves completed tasks out of notes. For every file it
// parses the note into a section tree, extracts the blocks each applicable
// rule selects, rewrites them (text replacement, metadata), places them
// under the archive heading of the same note or of a separate archive note,
// and writes the results back.
//
// Work on a file is staged: nothing is written until every rule has been
// applied in memory, and destinations are written before the source so a
// failure never loses tasks.
package archiver

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/task-archiver/internal/mdtree"
	"github.com/pdiddy/task-archiver/internal/placement"
	"github.com/pdiddy/task-archiver/internal/rule"
	"github.com/pdiddy/task-archiver/internal/vault"
	"github.com/pdiddy/task-archiver/pkg/types"
)

// Recorder stores committed archive operations.
type Recorder interface {
	Record(ctx context.Context, records []types.ArchiveRecord) error
}

// Archiver runs the archive pipeline over files of one vault.
type Archiver struct {
	cfg     types.Config
	vault   *vault.Vault
	rules   []*rule.Compiled
	replace *regexp2.Regexp
	indent  string

	history     Recorder
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
	concurrency int
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Archiver) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHistory records every committed operation in r.
func WithHistory(r Recorder) Option {
	return func(a *Archiver) { a.history = r }
}

// WithClock replaces time.Now, for date headings and placeholders.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.now = now }
}

// WithConcurrency bounds how many files are read and planned at once.
func WithConcurrency(n int) Option {
	return func(a *Archiver) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// New validates cfg, compiles its rules, and returns an archiver for v.
func New(cfg types.Config, v *vault.Vault, opts ...Option) (*Archiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rules, err := rule.CompileAll(cfg)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}

	a := &Archiver{
		cfg:         cfg,
		vault:       v,
		rules:       rules,
		indent:      cfg.Indentation.Unit(),
		logger:      zap.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}

	if tr := cfg.TextReplacement; tr.ApplyReplacement && tr.Regex != "" {
		if a.replace, err = rule.CompilePattern(tr.Regex); err != nil {
			return nil, fmt.Errorf("text_replacement: %w", err)
		}
	}

	for _, r := range rules {
		pc := a.placementConfig(r, time.Time{})
		if err := pc.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", r.Index, err)
		}
	}
	return a, nil
}

// Options control a run.
type Options struct {
	// DryRun plans everything and writes nothing.
	DryRun bool

	// Delete drops matching tasks instead of archiving them.
	Delete bool
}

// Move is one group of tasks taken out of a source file by one rule.
type Move struct {
	Rule int

	// Destination is the vault-relative file the tasks went to. It is empty
	// when the tasks were deleted.
	Destination string

	// Tasks counts top-level task blocks.
	Tasks int

	// Content is the moved text as it appears in the destination.
	Content string
}

// FileResult describes what happened to one source file.
type FileResult struct {
	Source string
	Moves  []Move

	// Written lists the files written, destinations first.
	Written []string
}

// Tasks returns the number of tasks moved out of the source.
func (r FileResult) Tasks() int {
	n := 0
	for _, m := range r.Moves {
		n += m.Tasks
	}
	return n
}

// Changed reports whether any tasks were moved.
func (r FileResult) Changed() bool {
	return len(r.Moves) > 0
}

// BatchResult holds the outcome of an archive run over many files.
type BatchResult struct {
	Archived int
	Skipped  int
	Failed   int

	// Tasks is the number of tasks moved across all files.
	Tasks int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Archived + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (a *Archiver) placementConfig(r *rule.Compiled, now time.Time) placement.Config {
	underHeading := !r.Rule.ArchiveToSeparateFile || a.cfg.ArchiveUnderHeading
	return placement.FromConfig(a.cfg, underHeading, now)
}

func (a *Archiver) parseOptions() mdtree.ParseOptions {
	return mdtree.ParseOptions{
		Indentation:    a.indent,
		SkipFencedCode: a.cfg.SkipFencedCode,
	}
}

// renderBlocks serializes blocks the way they appear in a note.
func (a *Archiver) renderBlocks(blocks []*mdtree.Block) string {
	var lines []string
	for _, b := range blocks {
		lines = append(lines, b.Stringify(a.indent)...)
	}
	return strings.Join(lines, "\n")
}
