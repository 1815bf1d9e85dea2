// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/task-archiver/internal/archiver"
	"github.com/pdiddy/task-archiver/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults(types.DefaultConfig())
	viper.SetEnvPrefix("TASK_ARCHIVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("TASK_ARCHIVER_ARCHIVE_HEADING", "Done")
	t.Setenv("TASK_ARCHIVER_INDENTATION_USE_TAB", "false")
	t.Setenv("TASK_ARCHIVER_INDENTATION_TAB_SIZE", "2")
	t.Setenv("TASK_ARCHIVER_WATCH_DEBOUNCE", "500ms")
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Done", cfg.ArchiveHeading)
	assert.Equal(t, "  ", cfg.Indentation.Unit())
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadConfig_File(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "task-archiver.yaml")
	content := `archive_heading: Completed
archive_heading_depth: 2
task_sort_order: newest-first
use_days: true
rules:
  - statuses: "x>"
    path_patterns: ["^work/"]
  - statuses: "-"
    archive_to_separate_file: true
    archive_file_name: "archive/{{sourceFileName}}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Completed", cfg.ArchiveHeading)
	assert.Equal(t, 2, cfg.ArchiveHeadingDepth)
	assert.Equal(t, types.SortNewestFirst, cfg.TaskSortOrder)
	assert.True(t, cfg.UseDays)
	assert.Equal(t, types.DefaultDailyNoteFormat, cfg.DailyNoteFormat, "unset keys keep defaults")
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, types.Rule{Statuses: "x>", PathPatterns: []string{"^work/"}}, cfg.Rules[0])
	assert.Equal(t, "archive/{{sourceFileName}}", cfg.Rules[1].ArchiveFileName)
}

func TestLoadConfig_Invalid(t *testing.T) {
	resetViper(t)
	viper.Set("archive_heading_depth", 9)

	_, err := loadConfig()
	assert.ErrorContains(t, err, "archive_heading_depth")
}

func TestFormatList(t *testing.T) {
	var buf bytes.Buffer
	formatList(&buf, []archiver.FileResult{{
		Source: "inbox.md",
		Moves: []archiver.Move{
			{Destination: "inbox.md", Tasks: 2, Content: "- [x] a\n\t- note\n- [x] b"},
			{Tasks: 1, Content: "- [-] c"},
		},
	}})

	want := `inbox.md -> inbox.md (2 task(s))
    - [x] a
    	- note
    - [x] b
inbox.md -> (deleted) (1 task(s))
    - [-] c

3 task(s) in 1 file(s)
`
	assert.Equal(t, want, buf.String())

	buf.Reset()
	formatList(&buf, nil)
	assert.Equal(t, "Nothing to archive.\n", buf.String())
}
