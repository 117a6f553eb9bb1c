package driven

import (
	"context"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// CookieWatcher defines the driven port for cookie change notifications.
// The scheduler consumes Events and debounces per platform; the watcher only
// reports that something under a platform's cookie domain may have changed.
type CookieWatcher interface {
	// Events returns the stream of change notifications. The channel is
	// closed when the watcher stops.
	Events() <-chan model.Platform

	// Start begins watching. It blocks until the context is canceled or the
	// underlying watch fails.
	Start(ctx context.Context) error
}
