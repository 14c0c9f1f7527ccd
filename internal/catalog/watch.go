package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc is called after every debounced reload with the new catalog,
// the content-relative paths that changed, and the build error if any.
type ReloadFunc func(c *Catalog, changed []string, err error)

// Watch starts an fsnotify watcher on the content root and reloads the
// library whenever files settle, until ctx is cancelled.
//
// New directories created at runtime are added to the watch list.
func (l *Library) Watch(ctx context.Context, logger *slog.Logger, debounce time.Duration, cb ReloadFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	root := l.store.Root()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending = make(map[string]struct{})
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			c, err := l.Reload()
			if err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Debug("watcher: reloaded",
					slog.Int("posts", len(c.Posts())),
					slog.Int("changed", len(changed)))
			}
			if cb != nil {
				cb(c, changed, err)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Chmod == ev.Op {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}
			if rel, relErr := filepath.Rel(root, ev.Name); relErr == nil {
				pending[filepath.ToSlash(rel)] = struct{}{}
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
