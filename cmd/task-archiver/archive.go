// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/task-archiver/internal/archiver"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [file...]",
	Short: "Move completed tasks to their archive",
	Long: `Archive moves the tasks each rule matches out of the given notes, or out
of every note in the vault when no files are given. Tasks go under the
archive heading of the same note or into a separate archive note,
depending on the rule.

With --delete, matching tasks are removed instead of archived.`,
	RunE: runArchive,
}

func runArchive(cmd *cobra.Command, args []string) error {
	del, _ := cmd.Flags().GetBool("delete")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	a, err := newApp(!dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := a.targets(args)
	if err != nil {
		return err
	}

	result := a.archiver.ArchiveBatch(context.Background(), paths, archiver.Options{
		DryRun: dryRun,
		Delete: del,
	}, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed", result.Failed)
	}
	return nil
}

func init() {
	archiveCmd.Flags().Bool("delete", false, "delete matching tasks instead of archiving them")
	archiveCmd.Flags().Bool("dry-run", false, "report what would change without writing")

	rootCmd.AddCommand(archiveCmd)
}
