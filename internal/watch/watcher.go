// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when one of a fixed set of files changes.
//
// Files are watched through their parent directories so that editors and
// plan generators that replace a file by renaming a temporary one are still
// seen. Events within the debounce window are coalesced so the callback
// fires once with every changed file.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not set.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoFiles is returned by New when Config.Files is empty.
var ErrNoFiles = errors.New("watch: no files to watch")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Files are the files whose changes trigger OnChange. Relative paths
		// are made absolute against the working directory.
		Files []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative values fall back to DefaultDebounce.
		Debounce time.Duration

		// OnChange is called with the sorted absolute paths that changed. A
		// nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger defaults to a stderr logger prefixed "watch".
		Logger *log.Logger
	}

	// Watcher monitors files and fires a debounced callback when they change.
	// Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		files    map[string]struct{}
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New resolves the watched files and registers their directories with
// fsnotify. A file does not need to exist yet.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, ErrNoFiles
	}

	files := make(map[string]struct{}, len(cfg.Files))
	dirs := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", f, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := fsw.Add(dir); err != nil {
			fsw.Close() //nolint:errcheck // best-effort cleanup
			return nil, fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithPrefix("watch")
	}

	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		files:    files,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Files returns the sorted absolute paths being watched.
func (w *Watcher) Files() []string {
	return slices.Sorted(maps.Keys(w.files))
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks. A
// callback still running when the next batch is due makes that batch wait
// for another debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug("change", "file", evt.Name, "op", evt.Op.String())

			mu.Lock()
			pending[filepath.Clean(evt.Name)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// relevant reports whether evt touches a watched file in a way that can
// change its content. Chmod-only events are ignored.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if _, ok := w.files[filepath.Clean(evt.Name)]; !ok {
		return false
	}
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) ||
		evt.Has(fsnotify.Rename) || evt.Has(fsnotify.Remove)
}
