// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/task-archiver/internal/archiver"
	"github.com/pdiddy/task-archiver/internal/history"
	"github.com/pdiddy/task-archiver/internal/vault"
	"github.com/pdiddy/task-archiver/pkg/types"
)

// app bundles what the commands share.
type app struct {
	cfg      types.Config
	vault    *vault.Vault
	history  *history.Store
	archiver *archiver.Archiver
}

// newApp loads the configuration and opens the vault. The history store is
// opened when withHistory is set and the configuration names one.
func newApp(withHistory bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	v, err := vault.NewOS(cfg.VaultDir)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, vault: v}

	opts := []archiver.Option{archiver.WithLogger(logger)}
	if withHistory && cfg.HistoryDB != "" {
		a.history, err = history.Open(historyPath(cfg, v))
		if err != nil {
			return nil, err
		}
		opts = append(opts, archiver.WithHistory(a.history))
	}

	a.archiver, err = archiver.New(cfg, v, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the history store.
func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
}

// openHistory opens the configured history store without the rest of the
// app.
func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.HistoryDB == "" {
		return nil, fmt.Errorf("history is disabled: history_db is empty")
	}
	v, err := vault.NewOS(cfg.VaultDir)
	if err != nil {
		return nil, err
	}
	return history.Open(historyPath(cfg, v))
}

func historyPath(cfg types.Config, v *vault.Vault) string {
	if filepath.IsAbs(cfg.HistoryDB) {
		return cfg.HistoryDB
	}
	return filepath.Join(v.Root(), cfg.HistoryDB)
}

// targets maps command arguments to vault-relative note paths. Without
// arguments every note in the vault is a target.
func (a *app) targets(args []string) ([]string, error) {
	if len(args) == 0 {
		return a.vault.MarkdownFiles()
	}

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		rel, err := a.resolve(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

// resolve accepts a path relative to the working directory, an absolute
// path, or a vault-relative path.
func (a *app) resolve(arg string) (string, error) {
	if !vault.IsMarkdown(arg) {
		return "", fmt.Errorf("%s is not a markdown note", arg)
	}
	if abs, err := filepath.Abs(arg); err == nil {
		if _, err := os.Stat(abs); err == nil {
			return a.vault.Rel(abs)
		}
	}
	rel := filepath.ToSlash(filepath.Clean(arg))
	if _, err := a.vault.Abs(rel); err != nil {
		return "", err
	}
	return rel, nil
}
