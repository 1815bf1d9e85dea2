// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/task-archiver/internal/archiver"
)

var listCmd = &cobra.Command{
	Use:   "list [file...]",
	Short: "Show the tasks archive would move",
	Long: `List applies every rule to the given notes, or to every note in the
vault, and prints the tasks that would be archived and where they would go.
Nothing is written.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := a.targets(args)
	if err != nil {
		return err
	}

	var (
		results []archiver.FileResult
		failed  int
	)
	for _, p := range paths {
		res, err := a.archiver.ArchiveFile(context.Background(), p, archiver.Options{DryRun: true})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed   %s: %v\n", p, err)
			failed++
			continue
		}
		if res.Changed() {
			results = append(results, res)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		formatList(os.Stdout, results)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

func formatList(w io.Writer, results []archiver.FileResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "Nothing to archive.")
		return
	}

	total := 0
	for _, res := range results {
		for _, m := range res.Moves {
			dest := m.Destination
			if dest == "" {
				dest = "(deleted)"
			}
			fmt.Fprintf(w, "%s -> %s (%d task(s))\n", res.Source, dest, m.Tasks)
			for _, line := range strings.Split(m.Content, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
		total += res.Tasks()
	}
	fmt.Fprintf(w, "\n%d task(s) in %d file(s)\n", total, len(results))
}

func init() {
	listCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(listCmd)
}
