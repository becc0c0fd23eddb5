// Package watch reports changes to the source files of a project.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/rectype/internal/config"
)

// DefaultDebounce is the quiet period after the last event before a batch
// of changes is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher batches file system events under a set of directories. Only
// files with a source extension are reported.
type Watcher struct {
	w        *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
}

// New watches dirs. A zero debounce means DefaultDebounce.
func New(dirs []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := set.New[string](len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			w.Close()
			return nil, err
		}
		if !seen.Insert(abs) {
			continue
		}
		if err := w.Add(abs); err != nil {
			w.Close()
			return nil, err
		}
	}
	return &Watcher{w: w, logger: logger.With("section", "watch"), debounce: debounce}, nil
}

// Run calls onChange with the sorted paths changed in each batch until ctx
// is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	pending := set.New[string](0)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || !isSource(ev.Name) {
				continue
			}
			w.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
			pending.Insert(ev.Name)
			timer.Reset(w.debounce)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			if pending.Size() == 0 {
				continue
			}
			changed := pending.Slice()
			sort.Strings(changed)
			pending = set.New[string](0)
			onChange(changed)
		}
	}
}

func (w *Watcher) Close() error { return w.w.Close() }

func isSource(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range config.SourceFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
