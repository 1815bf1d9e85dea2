// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archiver

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/task-archiver/internal/mdtree"
	"github.com/pdiddy/task-archiver/internal/placement"
	"github.com/pdiddy/task-archiver/pkg/types"
)

// ArchiveFile runs the pipeline on one vault-relative file.
// Archive files are left alone.
func (a *Archiver) ArchiveFile(ctx context.Context, source string, opts Options) (FileResult, error) {
	archives, err := a.archiveFiles(source)
	if err != nil {
		return FileResult{Source: source}, fmt.Errorf("archiving %s: %w", source, err)
	}
	if archives[source] {
		return FileResult{Source: source}, nil
	}
	p, err := a.plan(ctx, source, opts)
	if err != nil {
		return FileResult{Source: source}, fmt.Errorf("archiving %s: %w", source, err)
	}
	res, err := a.commit(ctx, p, opts, a.newID())
	if err != nil {
		return res, fmt.Errorf("archiving %s: %w", source, err)
	}
	return res, nil
}

// ArchiveBatch archives every path, printing one status line per file to w.
// Files are read and planned concurrently, then committed one at a time in
// input order. A failing file is reported and does not stop the batch.
// Archive files are skipped as sources.
func (a *Archiver) ArchiveBatch(ctx context.Context, paths []string, opts Options, w io.Writer) BatchResult {
	var result BatchResult
	archives, err := a.archiveFiles(paths...)
	if err != nil {
		fmt.Fprintf(w, "failed   %d file(s): %v\n", len(paths), err)
		a.logger.Error("finding archive files failed", zap.Error(err))
		result.Failed = len(paths)
		return result
	}

	plans := make([]*plan, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, source := range paths {
		if archives[source] {
			continue
		}
		i, source := i, source
		g.Go(func() error {
			plans[i], errs[i] = a.plan(gctx, source, opts)
			return nil
		})
	}
	_ = g.Wait()

	runID := a.newID()
	verb := "archived"
	switch {
	case opts.DryRun && opts.Delete:
		verb = "would delete"
	case opts.DryRun:
		verb = "would archive"
	case opts.Delete:
		verb = "deleted"
	}

	for i, source := range paths {
		p, err := plans[i], errs[i]
		if archives[source] {
			fmt.Fprintf(w, "skipped  %s (archive file)\n", source)
			result.Skipped++
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", source, err)
			a.logger.Error("archiving failed", zap.String("source", source), zap.Error(err))
			result.Failed++
			continue
		}
		if len(p.groups) == 0 {
			fmt.Fprintf(w, "skipped  %s (nothing to archive)\n", source)
			result.Skipped++
			continue
		}

		res, err := a.commit(ctx, p, opts, runID)
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", source, err)
			a.logger.Error("archiving failed", zap.String("source", source), zap.Error(err))
			result.Failed++
			continue
		}
		for _, m := range res.Moves {
			if m.Destination == "" {
				fmt.Fprintf(w, "%s %s: %d task(s)\n", verb, source, m.Tasks)
			} else {
				fmt.Fprintf(w, "%s %s: %d task(s) -> %s\n", verb, source, m.Tasks, m.Destination)
			}
		}
		result.Archived++
		result.Tasks += res.Tasks()
	}

	fmt.Fprintf(w, "\nBatch summary: %d archived, %d skipped, %d failed (total: %d, tasks: %d)\n",
		result.Archived, result.Skipped, result.Failed, result.Total(), result.Tasks)
	return result
}

// commit places separate-file groups into their archive files and writes
// every changed file, destinations first.
func (a *Archiver) commit(ctx context.Context, p *plan, opts Options, runID string) (FileResult, error) {
	res := FileResult{Source: p.source}
	if len(p.groups) == 0 {
		return res, nil
	}

	type write struct {
		path    string
		content string
	}
	var writes []write

	trees := make(map[string]*mdtree.Section)
	var order []string
	existed := make(map[string]bool)
	for _, g := range p.groups {
		if g.destination == "" || g.destination == p.source {
			continue
		}
		root, ok := trees[g.destination]
		if !ok {
			content, exists, err := a.vault.ReadOrEmpty(g.destination)
			if err != nil {
				return res, fmt.Errorf("reading archive file: %w", err)
			}
			root = mdtree.NewRootSection()
			if exists {
				root = mdtree.ParseDocument(content, a.parseOptions())
			}
			trees[g.destination] = root
			existed[g.destination] = exists
			order = append(order, g.destination)
		}
		if _, err := placement.Place(root, g.blocks, a.placementConfig(g.rule, p.now)); err != nil {
			return res, fmt.Errorf("rule %d: placing tasks in %s: %w", g.rule.Index, g.destination, err)
		}
	}
	for _, dest := range order {
		content := mdtree.Render(trees[dest], a.indent)
		if !existed[dest] && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		writes = append(writes, write{path: dest, content: content})
	}
	if rendered := mdtree.Render(p.root, a.indent); rendered != p.original {
		writes = append(writes, write{path: p.source, content: rendered})
	}

	for _, g := range p.groups {
		res.Moves = append(res.Moves, Move{
			Rule:        g.rule.Index,
			Destination: g.destination,
			Tasks:       len(g.blocks),
			Content:     g.content,
		})
	}
	if opts.DryRun {
		return res, nil
	}

	for _, w := range writes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := a.vault.Write(w.path, w.content); err != nil {
			return res, err
		}
		res.Written = append(res.Written, w.path)
	}
	a.logger.Info("archived tasks",
		zap.String("source", p.source),
		zap.Int("tasks", res.Tasks()),
		zap.Strings("written", res.Written))

	a.record(ctx, p, res, runID)
	return res, nil
}

// record stores res in the history. The files are already written, so a
// history failure is logged and otherwise ignored.
func (a *Archiver) record(ctx context.Context, p *plan, res FileResult, runID string) {
	if a.history == nil {
		return
	}
	records := make([]types.ArchiveRecord, len(res.Moves))
	for i, m := range res.Moves {
		records[i] = types.ArchiveRecord{
			ID:          a.newID(),
			RunID:       runID,
			Time:        p.now,
			Source:      p.source,
			Destination: m.Destination,
			Rule:        m.Rule,
			Tasks:       m.Tasks,
			Content:     m.Content,
		}
	}
	if err := a.history.Record(ctx, records); err != nil {
		a.logger.Warn("recording history failed", zap.String("source", p.source), zap.Error(err))
	}
}
