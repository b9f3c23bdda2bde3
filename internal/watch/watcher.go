// Package watch registers note files in the store as the external
// editor creates them, using an fsnotify watcher on the notes
// directory.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/service"
)

// EventCallback is called after a watcher-driven store change.
// kind is one of "registered", "deregistered".
type EventCallback func(kind string, id string)

// Watch processes file change events in the notes directory until ctx
// is cancelled. Files whose names are not note identifiers are
// ignored. Rename events trigger a debounced sync pass that reconciles
// the store against the directory, since fsnotify only reports the old
// path.
func Watch(ctx context.Context, svc *service.Service, notesRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(notesRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", notesRoot))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			added, removed, syncErr := svc.Sync(logger)
			if syncErr != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", syncErr.Error()))
				continue
			}
			if added > 0 || removed > 0 {
				logger.Debug("watcher: reconciled",
					slog.Int("added", added), slog.Int("removed", removed))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			id := filepath.Base(ev.Name)
			if !models.IsNoteID(id) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if regErr := svc.RegisterNote(id); regErr != nil {
					logger.Warn("watcher: register failed", slog.String("id", id), slog.String("error", regErr.Error()))
					continue
				}
				logger.Debug("watcher: registered", slog.String("id", id))
				if cb != nil {
					cb("registered", id)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := svc.DeregisterNote(id); delErr != nil {
					logger.Warn("watcher: deregister failed", slog.String("id", id), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deregistered", slog.String("id", id))
				if cb != nil {
					cb("deregistered", id)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; the new
				// path arrives as a separate Create event. Drop the old
				// record now and reconcile shortly after for stragglers.
				if delErr := svc.DeregisterNote(id); delErr != nil {
					logger.Warn("watcher: rename deregister failed", slog.String("id", id), slog.String("error", delErr.Error()))
				} else if cb != nil {
					cb("deregistered", id)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
