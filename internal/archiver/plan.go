// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archiver

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/task-archiver/internal/mdtree"
	"github.com/pdiddy/task-archiver/internal/placeholder"
	"github.com/pdiddy/task-archiver/internal/placement"
	"github.com/pdiddy/task-archiver/internal/rule"
	"github.com/pdiddy/task-archiver/internal/vault"
)

// plan is the in-memory outcome of archiving one file. The source tree has
// already lost its matching tasks and, for same-file rules, gained them
// under its archive heading. Separate archive files are touched at commit.
type plan struct {
	source   string
	original string
	root     *mdtree.Section
	now      time.Time
	groups   []*group
}

// group is the tasks one rule took out of the source.
type group struct {
	rule        *rule.Compiled
	destination string
	blocks      []*mdtree.Block
	content     string
}

func (p *plan) tasks() int {
	n := 0
	for _, g := range p.groups {
		n += len(g.blocks)
	}
	return n
}

// plan reads source and applies every rule to it in memory.
func (a *Archiver) plan(ctx context.Context, source string, opts Options) (*plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := a.vault.Read(source)
	if err != nil {
		return nil, err
	}

	now := a.now()
	p := &plan{
		source:   source,
		original: content,
		root:     mdtree.ParseDocument(content, a.parseOptions()),
		now:      now,
	}

	for _, r := range a.rules {
		ok, err := r.AppliesTo(source)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", r.Index, err)
		}
		if !ok {
			continue
		}

		var dest string
		if !opts.Delete {
			dest = a.destination(r, source, now)
			if r.Rule.ArchiveToSeparateFile && dest == source {
				a.logger.Warn("archive file is the source file, rule skipped",
					zap.String("source", source), zap.Int("rule", r.Index))
				continue
			}
		}

		items, err := mdtree.ExtractWithContext(p.root, mdtree.Strategy{
			Filter:    r.Filter,
			Extractor: mdtree.DeepExtractBlocks,
		})
		if err != nil {
			return nil, fmt.Errorf("rule %d: extracting tasks: %w", r.Index, err)
		}
		if len(items) == 0 {
			continue
		}

		blocks := make([]*mdtree.Block, len(items))
		for i, item := range items {
			blocks[i] = item.Block
		}
		if !opts.Delete {
			if err := a.transform(items, source, now); err != nil {
				return nil, fmt.Errorf("rule %d: %w", r.Index, err)
			}
		}

		p.groups = append(p.groups, &group{
			rule:        r,
			destination: dest,
			blocks:      blocks,
			content:     a.renderBlocks(blocks),
		})
		a.logger.Debug("extracted tasks",
			zap.String("source", source),
			zap.Int("rule", r.Index),
			zap.Int("tasks", len(blocks)),
			zap.String("destination", dest))
	}

	if len(p.groups) == 0 {
		return p, nil
	}

	for _, g := range p.groups {
		if g.destination != source {
			continue
		}
		if _, err := placement.Place(p.root, g.blocks, a.placementConfig(g.rule, now)); err != nil {
			return nil, fmt.Errorf("rule %d: placing tasks: %w", g.rule.Index, err)
		}
	}
	if a.cfg.AddNewlinesAroundHeadings {
		mdtree.NormalizeNewlinesRecursively(p.root)
	}
	return p, nil
}

// destination resolves where r sends tasks from source.
func (a *Archiver) destination(r *rule.Compiled, source string, now time.Time) string {
	if !r.Rule.ArchiveToSeparateFile {
		return source
	}
	name := placeholder.Resolve(archiveTemplate(r), placeholder.Context{
		Now:        now,
		DateFormat: r.Rule.DateFormat,
		SourcePath: source,
	})
	return vault.WithExt(path.Clean(name))
}

// transform rewrites extracted tasks before they are archived.
func (a *Archiver) transform(items []mdtree.Extracted, source string, now time.Time) error {
	md := a.cfg.AdditionalMetadataBeforeArchiving
	for _, item := range items {
		if a.replace != nil {
			if err := a.replaceText(item.Block); err != nil {
				return err
			}
		}
		if md.AddMetadata && md.Metadata != "" {
			var heading string
			if item.Section != nil && !item.Section.IsRoot() {
				heading = item.Section.Heading
			}
			meta := placeholder.Resolve(md.Metadata, placeholder.Context{
				Now:        now,
				DateFormat: md.DateFormat,
				SourcePath: source,
				Heading:    heading,
			})
			item.Block.Text = strings.TrimRight(item.Block.Text, " \t") + " " + meta
		}
	}
	return nil
}

// replaceText applies the configured replacement to b and every line
// nested under it.
func (a *Archiver) replaceText(b *mdtree.Block) error {
	out, err := a.replace.Replace(b.Text, a.cfg.TextReplacement.Replacement, -1, -1)
	if err != nil {
		return fmt.Errorf("text replacement on %q: %w", b.Text, err)
	}
	b.Text = out
	for _, child := range b.Children {
		if err := a.replaceText(child); err != nil {
			return err
		}
	}
	return nil
}
