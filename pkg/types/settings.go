// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TaskSortOrder decides where newly archived tasks go relative to tasks
// archived earlier under the same heading.
type TaskSortOrder string

const (
	SortNewestLast  TaskSortOrder = "newest-last"
	SortNewestFirst TaskSortOrder = "newest-first"
)

// IndentationConfig describes the unit that marks one level of nesting.
type IndentationConfig struct {
	// UseTab selects a single tab as the unit. Otherwise TabSize spaces.
	UseTab bool `json:"use_tab" yaml:"use_tab"`

	// TabSize is the number of spaces in one unit when UseTab is false.
	TabSize int `json:"tab_size" yaml:"tab_size"`
}

// Unit returns the literal indentation string.
func (c IndentationConfig) Unit() string {
	if c.UseTab {
		return "\t"
	}
	n := c.TabSize
	if n <= 0 {
		n = 4
	}
	return strings.Repeat(" ", n)
}

// TextReplacement is a find/replace applied to every line of an archived
// task before it is written to the archive.
type TextReplacement struct {
	ApplyReplacement bool   `json:"apply_replacement" yaml:"apply_replacement"`
	Regex            string `json:"regex" yaml:"regex"`
	Replacement      string `json:"replacement" yaml:"replacement"`
}

// AdditionalMetadata is text appended to the first line of every archived
// task. Metadata may contain {{date}} and {{heading}} placeholders.
type AdditionalMetadata struct {
	AddMetadata bool   `json:"add_metadata" yaml:"add_metadata"`
	Metadata    string `json:"metadata" yaml:"metadata"`
	DateFormat  string `json:"date_format" yaml:"date_format"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is how long a file must stay unchanged before it is archived.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// Rule selects which tasks move where. A task matches when its checkbox
// glyph is one of Statuses (any checked glyph when Statuses is empty) and
// its file path matches one of PathPatterns (any file when empty).
type Rule struct {
	// Statuses is the set of checkbox glyphs, e.g. "x>-".
	Statuses string `json:"statuses" yaml:"statuses"`

	// PathPatterns are regular expressions over vault-relative file paths.
	PathPatterns []string `json:"path_patterns" yaml:"path_patterns"`

	// TaskPattern optionally narrows matches to tasks whose line also
	// matches this regular expression.
	TaskPattern string `json:"task_pattern,omitempty" yaml:"task_pattern,omitempty"`

	// ArchiveToSeparateFile moves tasks to ArchiveFileName instead of the
	// archive heading of the source file.
	ArchiveToSeparateFile bool `json:"archive_to_separate_file" yaml:"archive_to_separate_file"`

	// ArchiveFileName is the destination path pattern; placeholders such
	// as {{sourceFileName}} and {{date}} are resolved per source file.
	ArchiveFileName string `json:"archive_file_name" yaml:"archive_file_name"`

	// DateFormat is the strftime layout of {{date}} in ArchiveFileName.
	DateFormat string `json:"date_format" yaml:"date_format"`
}

// Config is the full archiver configuration.
type Config struct {
	// VaultDir is the directory holding the notes.
	VaultDir string `json:"vault_dir" yaml:"vault_dir"`

	Indentation IndentationConfig `json:"indentation" yaml:"indentation"`

	// ArchiveHeading is the heading text of the archive section.
	ArchiveHeading string `json:"archive_heading" yaml:"archive_heading"`

	// ArchiveHeadingDepth is the level of newly created archive headings (1-6).
	ArchiveHeadingDepth int `json:"archive_heading_depth" yaml:"archive_heading_depth"`

	AddNewlinesAroundHeadings  bool          `json:"add_newlines_around_headings" yaml:"add_newlines_around_headings"`
	ArchiveAllCheckedTaskTypes bool          `json:"archive_all_checked_task_types" yaml:"archive_all_checked_task_types"`
	TaskSortOrder              TaskSortOrder `json:"task_sort_order" yaml:"task_sort_order"`

	// ArchiveToSeparateFile, ArchiveUnderHeading, DefaultArchiveFileName
	// and DateFormat configure the implicit rule used when Rules is empty.
	ArchiveToSeparateFile  bool   `json:"archive_to_separate_file" yaml:"archive_to_separate_file"`
	ArchiveUnderHeading    bool   `json:"archive_under_heading" yaml:"archive_under_heading"`
	DefaultArchiveFileName string `json:"default_archive_file_name" yaml:"default_archive_file_name"`
	DateFormat             string `json:"date_format" yaml:"date_format"`

	UseWeeks         bool   `json:"use_weeks" yaml:"use_weeks"`
	WeeklyNoteFormat string `json:"weekly_note_format" yaml:"weekly_note_format"`
	UseDays          bool   `json:"use_days" yaml:"use_days"`
	DailyNoteFormat  string `json:"daily_note_format" yaml:"daily_note_format"`

	TextReplacement                   TextReplacement    `json:"text_replacement" yaml:"text_replacement"`
	AdditionalMetadataBeforeArchiving AdditionalMetadata `json:"additional_metadata_before_archiving" yaml:"additional_metadata_before_archiving"`

	// ExcludedHeadings are sections never scanned for tasks.
	ExcludedHeadings []string `json:"excluded_headings,omitempty" yaml:"excluded_headings,omitempty"`

	// SkipFencedCode keeps heading-like lines inside code fences as text.
	SkipFencedCode bool `json:"skip_fenced_code" yaml:"skip_fenced_code"`

	// HistoryDB is the sqlite ledger path, relative to VaultDir when not
	// absolute. Empty disables history.
	HistoryDB string `json:"history_db" yaml:"history_db"`

	Watch WatchConfig `json:"watch" yaml:"watch"`

	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Date format defaults, as strftime layouts.
const (
	DefaultDateFormat       = "%Y-%m-%d"
	DefaultWeeklyNoteFormat = "%G-W%V"
	DefaultDailyNoteFormat  = "%Y-%m-%d"
)

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		VaultDir:                  ".",
		Indentation:               IndentationConfig{UseTab: true, TabSize: 4},
		ArchiveHeading:            "Archived",
		ArchiveHeadingDepth:       1,
		AddNewlinesAroundHeadings: true,
		TaskSortOrder:             SortNewestLast,
		ArchiveUnderHeading:       true,
		DefaultArchiveFileName:    "{{sourceFileName}} (archive)",
		DateFormat:                DefaultDateFormat,
		WeeklyNoteFormat:          DefaultWeeklyNoteFormat,
		DailyNoteFormat:           DefaultDailyNoteFormat,
		AdditionalMetadataBeforeArchiving: AdditionalMetadata{
			Metadata:   "(archived {{date}})",
			DateFormat: DefaultDateFormat,
		},
		HistoryDB: ".task-archiver/history.db",
		Watch:     WatchConfig{Debounce: 2 * time.Second},
	}
}

// Validate checks settings that would otherwise fail deep inside an
// archive run.
func (c Config) Validate() error {
	if !c.Indentation.UseTab && c.Indentation.TabSize <= 0 {
		return fmt.Errorf("indentation.tab_size must be positive, got %d", c.Indentation.TabSize)
	}
	if c.ArchiveHeadingDepth < 1 || c.ArchiveHeadingDepth > 6 {
		return fmt.Errorf("archive_heading_depth must be between 1 and 6, got %d", c.ArchiveHeadingDepth)
	}
	switch c.TaskSortOrder {
	case SortNewestLast, SortNewestFirst, "":
	default:
		return fmt.Errorf("unsupported task_sort_order %q: use %s or %s", c.TaskSortOrder, SortNewestLast, SortNewestFirst)
	}
	for i, r := range c.Rules {
		if r.ArchiveToSeparateFile && r.ArchiveFileName == "" {
			return fmt.Errorf("rule %d: archive_file_name is required when archive_to_separate_file is set", i)
		}
	}
	if c.usesArchiveHeading() && strings.TrimSpace(c.ArchiveHeading) == "" {
		return errors.New("archive_heading is required when tasks are archived under a heading")
	}
	return nil
}

// usesArchiveHeading reports whether any rule places tasks under the
// archive heading. Same-file rules always do.
func (c Config) usesArchiveHeading() bool {
	if c.ArchiveUnderHeading {
		return true
	}
	if len(c.Rules) == 0 {
		return !c.ArchiveToSeparateFile
	}
	for _, r := range c.Rules {
		if !r.ArchiveToSeparateFile {
			return true
		}
	}
	return false
}
