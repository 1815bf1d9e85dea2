// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/task-archiver/internal/history"
	"github.com/pdiddy/task-archiver/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the ledger of archived tasks",
	Long: `History reads the SQLite ledger every archive run appends to. Each entry
records the source note, the destination, the rule, and the archived text.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent archive operations",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	opts, err := historyOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	formatHistory(os.Stdout, records)
	return nil
}

func formatHistory(w io.Writer, records []types.ArchiveRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No archive history.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-30s  %-30s  %5s  %s\n", "Time", "Source", "Destination", "Tasks", "First task")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range records {
		dest := r.Destination
		if dest == "" {
			dest = "(deleted)"
		}
		first, _, _ := strings.Cut(r.Content, "\n")
		fmt.Fprintf(w, "%-20s  %-30s  %-30s  %5d  %s\n",
			r.Time.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Source, 30), truncate(dest, 30), r.Tasks, truncate(strings.TrimSpace(first), 40))
	}

	fmt.Fprintf(w, "\n%d entries\n", len(records))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archive history to YAML or JSON",
	Long: `Export writes the whole ledger (or a filtered subset) to stdout or to the
file given with --output. Supports the same filter flags as list.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	opts, err := historyOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(context.Background(), opts, w)
	case "json":
		err = store.ExportJSON(context.Background(), opts, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

// --- shared helpers ---

func historyOptsFromFlags(cmd *cobra.Command) (history.QueryOptions, error) {
	source, _ := cmd.Flags().GetString("source")
	runID, _ := cmd.Flags().GetString("run")
	contains, _ := cmd.Flags().GetString("contains")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")

	if since < 0 {
		return history.QueryOptions{}, fmt.Errorf("--since must not be negative")
	}
	opts := history.QueryOptions{
		Source:   source,
		RunID:    runID,
		Contains: contains,
		Limit:    limit,
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since)
	}
	return opts, nil
}

func addHistoryFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "filter by vault-relative source note")
	cmd.Flags().String("run", "", "filter by run ID")
	cmd.Flags().String("contains", "", "filter by text in the archived tasks")
	cmd.Flags().Duration("since", 0, "only entries newer than this age, e.g. 72h")
}

func init() {
	addHistoryFilterFlags(historyListCmd)
	historyListCmd.Flags().Int("limit", 50, "maximum entries (-1 = all)")
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")

	addHistoryFilterFlags(historyExportCmd)
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("output", "", "write to this file instead of stdout")
	historyExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
