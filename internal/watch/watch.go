// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs archiving when notes change. Events are debounced
// per file so an editor's burst of saves triggers one run once the file
// has been quiet for the debounce window.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdiddy/task-archiver/internal/vault"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 2 * time.Second

// Handler receives the vault-relative paths of notes that settled.
type Handler func(ctx context.Context, paths []string)

// Stats counts watcher activity.
type Stats struct {
	Events   int
	Batches  int
	Errors   int
	LastPath string
}

// Watcher watches a vault directory tree for note changes.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	root     string
	handler  Handler
	logger   *zap.Logger
	pending  map[string]time.Time
	debounce time.Duration
	tick     time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// New returns a watcher for the tree under root. Nothing is watched until
// Start.
func New(root string, debounce time.Duration, handler Handler, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tick := debounce / 4
	switch {
	case tick > 100*time.Millisecond:
		tick = 100 * time.Millisecond
	case tick < 5*time.Millisecond:
		tick = 5 * time.Millisecond
	}

	return &Watcher{
		watcher:  fw,
		root:     filepath.Clean(root),
		handler:  handler,
		logger:   logger,
		pending:  make(map[string]time.Time),
		debounce: debounce,
		tick:     tick,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches root and every non-hidden directory below it, then
// processes events in a goroutine until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching vault", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for it, and releases the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", zap.Error(err))
	}
	w.logger.Info("watcher stopped")
}

// Run is Start followed by blocking until ctx is done, then Stop.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 && !hidden(filepath.Base(event.Name)) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watching new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !vault.IsMarkdown(event.Name) || hidden(filepath.Base(event.Name)) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.pending[event.Name] = time.Now()
		w.stats.Events++
		w.stats.LastPath = event.Name
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		delete(w.pending, event.Name)
	}
}

// flush hands every file that has been quiet for the debounce window to
// the handler.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for p, at := range w.pending {
		if now.Sub(at) < w.debounce {
			continue
		}
		delete(w.pending, p)
		rel, err := filepath.Rel(w.root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		settled = append(settled, filepath.ToSlash(rel))
	}
	if len(settled) > 0 {
		w.stats.Batches++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	sort.Strings(settled)
	w.logger.Debug("files settled", zap.Strings("paths", settled))
	w.handler(ctx, settled)
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
