// Package watch re-runs a callback when scenario files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback on file changes, coalescing bursts of events.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// New returns a Watcher with the default debounce.
func New(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{Debounce: DefaultDebounce, Logger: logger}
}

// Run calls fn once, then again after every settled change to one of paths,
// until ctx is cancelled. Paths may be files or directories; in a directory
// only YAML files count. Parent directories are watched so editors that
// replace files on save are still seen.
func (w *Watcher) Run(ctx context.Context, paths []string, fn func(ctx context.Context)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		dir := abs
		if info.IsDir() {
			dirs[abs] = true
		} else {
			files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	fn(ctx)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if !relevant(event.Name, files, dirs) {
				continue
			}
			w.Logger.Debug("scenario file changed", "file", event.Name, "op", event.Op.String())
			fire = time.After(debounce)
		case <-fire:
			fire = nil
			w.Logger.Info("re-running scenarios after change")
			fn(ctx)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watcher error", "error", err)
		}
	}
}

func relevant(name string, files, dirs map[string]bool) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if files[abs] {
		return true
	}
	if !dirs[filepath.Dir(abs)] {
		return false
	}
	ext := strings.ToLower(filepath.Ext(abs))
	return ext == ".yaml" || ext == ".yml"
}
