package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the library whenever files under the data directory change,
// once events have been quiet for debounce. It blocks until ctx is done. A
// failed reload is logged and the previous snapshot kept.
func (l *Library) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(l.dir); err != nil {
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read data dir %s: %w", l.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(l.dir, e.Name())); err != nil {
				l.logger.Warn("watch feed dir", "dir", e.Name(), "error", err)
			}
		}
	}
	l.logger.Info("watching data dir", "dir", l.dir, "debounce", debounce)

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						l.logger.Warn("watch feed dir", "dir", ev.Name, "error", err)
					}
				}
			}
			l.logger.Debug("data dir changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("watcher error", "error", err)

		case <-fire:
			if err := l.Reload(ctx); err != nil {
				l.logger.Error("reload after change failed", "error", err)
			}
		}
	}
}
