package stubapi

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/sse"
)

// WatchFixture watches a seed fixture file and reloads the dataset
// whenever it changes, until ctx is cancelled. Editors often replace
// files on save, so the parent directory is watched and events are
// debounced before reloading.
func (s *Server) WatchFixture(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	s.logger.Info("fixture watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			s.logger.Info("fixture watcher: stopped")
			return nil

		case <-reloadCh:
			seed, err := LoadSeed(abs)
			if err != nil {
				s.logger.Warn("fixture watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			s.applySeed(seed)
			s.events.Publish(sse.Event{Type: "dataset.reloaded", Data: map[string]int{
				"jobs":       len(seed.Jobs),
				"candidates": len(seed.Candidates),
			}})
			s.logger.Info("fixture watcher: dataset reloaded",
				slog.Int("jobs", len(seed.Jobs)),
				slog.Int("candidates", len(seed.Candidates)))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("fixture watcher: error", slog.String("error", err.Error()))
		}
	}
}
