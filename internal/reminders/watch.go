package reminders

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dosebell/internal/storage"
)

// EventCallback is called after the watcher re-checks a changed file.
// kind is one of "valid", "invalid", "removed". err is set for "invalid".
type EventCallback func(kind, name string, err error)

// Watch observes the data directory and re-parses reminder files as they
// change, so a malformed edit is reported before the next dispatch run.
// Nothing is cached; runs still read the files fresh. Watch blocks until ctx
// is cancelled.
func (r *Repository) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := r.store.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	r.logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if r.Legacy() {
				if name != r.legacy {
					continue
				}
			} else if !strings.HasSuffix(name, storage.Ext) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if _, err := r.readRecord(name); err != nil {
					r.logger.Warn("watcher: reminder file will be skipped",
						slog.String("path", name),
						slog.String("error", err.Error()))
					if cb != nil {
						cb("invalid", name, err)
					}
					continue
				}
				r.logger.Debug("watcher: reminder file ok", slog.String("path", name))
				if cb != nil {
					cb("valid", name, nil)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				r.logger.Info("watcher: reminder file removed", slog.String("path", name))
				if cb != nil {
					cb("removed", name, nil)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
