// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/task-archiver/internal/archiver"
	"github.com/pdiddy/task-archiver/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Archive tasks whenever a note changes",
	Long: `Watch monitors the vault and archives the notes that change, once each
has been quiet for the debounce window (watch.debounce). It runs until
interrupted.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	initial, _ := cmd.Flags().GetBool("initial")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if initial {
		paths, err := a.vault.MarkdownFiles()
		if err != nil {
			return err
		}
		a.archiver.ArchiveBatch(ctx, paths, archiver.Options{}, os.Stdout)
	}

	handler := func(ctx context.Context, paths []string) {
		result := a.archiver.ArchiveBatch(ctx, paths, archiver.Options{}, os.Stdout)
		if result.HasFailures() {
			logger.Warn("archive run had failures", zap.Int("failed", result.Failed))
		}
	}

	w, err := watch.New(a.vault.Root(), a.cfg.Watch.Debounce, handler, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func init() {
	watchCmd.Flags().Bool("initial", false, "archive every note once before watching")

	rootCmd.AddCommand(watchCmd)
}
