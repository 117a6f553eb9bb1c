package browser

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CookieWatcher = (*Watcher)(nil)

// Watcher implements the CookieWatcher port with fsnotify over the directory
// containing the cookie database. The profile directory is watched rather
// than the file itself because browsers replace the database atomically and
// write through WAL sidecar files, both of which would detach a file watch.
//
// The cookie database holds every platform's cookies, so one file event
// fans out to a notification per platform; the scheduler's per-platform
// debounce absorbs the noise.
type Watcher struct {
	dbPath string
	logger *slog.Logger
	events chan model.Platform
}

// NewWatcher creates a Watcher for the given cookies.sqlite path.
func NewWatcher(dbPath string, logger *slog.Logger) *Watcher {
	return &Watcher{
		dbPath: dbPath,
		logger: logger,
		events: make(chan model.Platform, 16),
	}
}

// Events returns the change notification stream. Closed when Start returns.
func (w *Watcher) Events() <-chan model.Platform {
	return w.events
}

// Start watches the cookie database until the context is canceled or the
// underlying watch fails. Notifications that cannot be delivered because the
// buffer is full are dropped; the periodic fallback sync covers the gap.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.dbPath)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("cookie watcher started", "dir", dir)

	base := filepath.Base(w.dbPath)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cookie watcher stopped")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.isCookieFile(base, ev.Name) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			for _, p := range model.Platforms {
				select {
				case w.events <- p:
				default:
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("cookie watcher error", "error", err)
		}
	}
}

// isCookieFile reports whether a filesystem event path refers to the cookie
// database or one of its SQLite sidecar files (-wal, -journal, -shm).
func (w *Watcher) isCookieFile(base, eventPath string) bool {
	name := filepath.Base(eventPath)
	return name == base || strings.HasPrefix(name, base+"-")
}
