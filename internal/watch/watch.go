// Package watch re-runs the rewrite pipeline when Go sources change.
package watch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a batch of changes is handled.
const DefaultDebounce = 200 * time.Millisecond

// RunFunc runs one pass and returns the files it wrote itself.
type RunFunc func(ctx context.Context) (written []string, err error)

// Watcher runs a RunFunc once, then again after each batch of changes to
// .go files in the watched directories. Changes caused by the RunFunc's own
// writes are ignored.
type Watcher struct {
	dirs     []string
	run      RunFunc
	debounce time.Duration
	logger   zerolog.Logger

	mu   sync.Mutex
	own  map[string][sha256.Size]byte
	runs int
}

// New creates a Watcher for dirs.
func New(dirs []string, run RunFunc, debounce time.Duration, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		dirs:     dirs,
		run:      run,
		debounce: debounce,
		logger:   logger,
		own:      map[string][sha256.Size]byte{},
	}
}

// Runs returns how many passes have completed.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.runs
}

// Run blocks until ctx is done. Errors of a pass are logged and watching
// continues; only setup errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	w.logger.Info().Strs("dirs", w.dirs).Msg("watching for changes")

	w.pass(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	pending := false

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("source changed")

			pending = true

			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Error().Err(err).Msg("file watcher error")

		case <-timer.C:
			if pending {
				pending = false
				w.pass(ctx)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// relevant reports whether an event should trigger a pass.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := event.Name
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}

	// React to write or create (atomic save = create)
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}

	return !w.isOwnWrite(name)
}

// isOwnWrite reports whether the file still holds what the last pass wrote.
func (w *Watcher) isOwnWrite(name string) bool {
	w.mu.Lock()
	sum, ok := w.own[filepath.Clean(name)]
	w.mu.Unlock()

	if !ok {
		return false
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return false
	}

	current := sha256.Sum256(data)

	return bytes.Equal(current[:], sum[:])
}

// pass runs once and remembers the files it wrote.
func (w *Watcher) pass(ctx context.Context) {
	written, err := w.run(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("rewrite pass failed")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.runs++

	for _, name := range written {
		data, err := os.ReadFile(name)
		if err != nil {
			continue
		}

		w.own[filepath.Clean(name)] = sha256.Sum256(data)
	}

	w.logger.Debug().Int("written", len(written)).Int("pass", w.runs).Msg("pass finished")
}
