// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package placement finds or creates the section archived tasks go to and
// merges them into it.
//
// The target is resolved in three steps. The archive section is located by
// heading anywhere in the destination tree, or created at the configured
// depth after the last section that can hold it. Under it, optional week and
// day headings of the form [[<formatted date>]] are located among its direct
// children or created one level deeper each. Finally the incoming blocks are
// merged with the content already there, separated by one blank line.
package placement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/task-archiver/internal/mdtree"
	"github.com/pdiddy/task-archiver/internal/placeholder"
	"github.com/pdiddy/task-archiver/pkg/types"
)

// MaxHeadingLevel is the deepest markdown heading.
const MaxHeadingLevel = 6

// ErrHeadingTooDeep is returned when the archive heading plus its date
// headings would need a level beyond MaxHeadingLevel.
var ErrHeadingTooDeep = errors.New("heading level exceeds 6")

// DateHeading configures one level of the date tree.
type DateHeading struct {
	Enabled bool

	// Format is the strftime layout of the heading text.
	Format string
}

// Config controls where Place puts blocks.
type Config struct {
	ArchiveHeading string

	// HeadingDepth is the level of a newly created archive heading.
	HeadingDepth int

	// UseArchiveHeading places blocks under ArchiveHeading. When false the
	// document root is the anchor of the date tree.
	UseArchiveHeading bool

	AddNewlinesAroundHeadings bool
	SortOrder                 types.TaskSortOrder

	Weeks DateHeading
	Days  DateHeading

	// Now dates the week and day headings.
	Now time.Time
}

// FromConfig derives placement settings from the archiver configuration.
// underHeading comes from the rule being applied.
func FromConfig(cfg types.Config, underHeading bool, now time.Time) Config {
	return Config{
		ArchiveHeading:            cfg.ArchiveHeading,
		HeadingDepth:              cfg.ArchiveHeadingDepth,
		UseArchiveHeading:         underHeading,
		AddNewlinesAroundHeadings: cfg.AddNewlinesAroundHeadings,
		SortOrder:                 cfg.TaskSortOrder,
		Weeks:                     DateHeading{Enabled: cfg.UseWeeks, Format: cfg.WeeklyNoteFormat},
		Days:                      DateHeading{Enabled: cfg.UseDays, Format: cfg.DailyNoteFormat},
		Now:                       now,
	}
}

// Validate reports settings Place cannot honor.
func (c Config) Validate() error {
	level := 0
	if c.UseArchiveHeading {
		if strings.TrimSpace(c.ArchiveHeading) == "" {
			return errors.New("archive heading is empty")
		}
		if c.HeadingDepth < 1 {
			return fmt.Errorf("archive heading depth must be at least 1, got %d", c.HeadingDepth)
		}
		level = c.HeadingDepth
	}
	return c.checkDepth(level)
}

// checkDepth reports whether date headings fit below a section at level.
func (c Config) checkDepth(level int) error {
	if c.Weeks.Enabled {
		level++
	}
	if c.Days.Enabled {
		level++
	}
	if level > MaxHeadingLevel {
		return fmt.Errorf("%w: archive headings need level %d", ErrHeadingTooDeep, level)
	}
	return nil
}

// Place moves blocks into dest and returns the section that received them.
// The blocks become children of that section's content; dest owns them
// afterwards.
func Place(dest *mdtree.Section, blocks []*mdtree.Block, cfg Config) (*mdtree.Section, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	target := dest
	if cfg.UseArchiveHeading {
		found := mdtree.FindSection(dest, mdtree.HeadingMatcher(cfg.ArchiveHeading))
		if found != nil {
			// An existing heading may sit deeper than HeadingDepth.
			if err := cfg.checkDepth(found.Level); err != nil {
				return nil, err
			}
			target = found
		} else {
			target = newArchiveSection(dest, cfg)
		}
	}
	if cfg.Weeks.Enabled {
		target = dateSection(target, cfg.Weeks, cfg)
	}
	if cfg.Days.Enabled {
		target = dateSection(target, cfg.Days, cfg)
	}

	merge(target, blocks, cfg)
	return target, nil
}

// DateHeadingText is the heading text used for a date level.
func DateHeadingText(format string, now time.Time) string {
	return "[[" + placeholder.FormatDate(format, now) + "]]"
}

// newArchiveSection creates the archive heading at HeadingDepth after the
// last section that can hold it.
func newArchiveSection(dest *mdtree.Section, cfg Config) *mdtree.Section {
	parent := dest
	for len(parent.Children) > 0 {
		last := parent.Children[len(parent.Children)-1]
		if last.Level >= cfg.HeadingDepth {
			break
		}
		parent = last
	}
	if cfg.AddNewlinesAroundHeadings {
		mdtree.AddNewlinesToSection(parent)
	}
	section := mdtree.NewSection(cfg.ArchiveHeading, cfg.HeadingDepth)
	parent.AppendChild(section)
	return section
}

func dateSection(parent *mdtree.Section, h DateHeading, cfg Config) *mdtree.Section {
	heading := DateHeadingText(h.Format, cfg.Now)
	for _, child := range parent.Children {
		if child.Heading == heading {
			return child
		}
	}

	section := mdtree.NewSection(heading, parent.Level+1)
	if cfg.SortOrder == types.SortNewestFirst {
		parent.Children = append([]*mdtree.Section{section}, parent.Children...)
		return section
	}
	if cfg.AddNewlinesAroundHeadings {
		mdtree.AddNewlinesToSection(parent)
	}
	parent.AppendChild(section)
	return section
}

// merge joins existing content and incoming blocks into one group per
// archive run, separated by a blank line.
func merge(target *mdtree.Section, incoming []*mdtree.Block, cfg Config) {
	original := target.Content.Children
	existing := mdtree.StripSurroundingNewlines(original)
	added := mdtree.StripSurroundingNewlines(incoming)

	var merged []*mdtree.Block
	switch {
	case len(existing) == 0:
		merged = added
	case len(added) == 0:
		merged = existing
	case cfg.SortOrder == types.SortNewestFirst:
		merged = append(append(added, mdtree.NewBlankBlock()), existing...)
	default:
		merged = append(append(existing, mdtree.NewBlankBlock()), added...)
	}

	switch {
	case target.IsRoot():
		if n := len(original); n > 0 && original[n-1].IsBlank() && len(original[n-1].Children) == 0 {
			merged = append(merged, mdtree.NewBlankBlock())
		}
	case cfg.AddNewlinesAroundHeadings:
		merged = mdtree.NormalizeNewlines(merged)
	}
	target.Content.Children = merged
}
