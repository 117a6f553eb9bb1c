package driven

import (
	"context"
	"errors"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by SettingsStore token operations when
// COOKIESYNC_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set COOKIESYNC_SECRET_KEY")

// SettingsStore defines the driven port for the daemon's persistent record:
// the auth token and the per-platform linkage records. The adapter layer is
// responsible for token encryption; this interface operates on plaintext at
// the domain boundary.
type SettingsStore interface {
	// AuthToken retrieves the stored bearer token.
	// Returns ("", nil) if no token is stored.
	AuthToken(ctx context.Context) (string, error)

	// SetAuthToken stores or replaces the bearer token.
	SetAuthToken(ctx context.Context, token string) error

	// Linkage retrieves the backend account id linked to the platform.
	// Returns ("", nil) if the platform has never been linked.
	Linkage(ctx context.Context, platform model.Platform) (string, error)

	// PersistLinkage records the backend account id for the platform. The
	// write applies only if no linkage exists yet; a later call with a
	// different id is a no-op, preserving the first-linked identifier.
	PersistLinkage(ctx context.Context, platform model.Platform, accountID string) error

	// ClearAll removes the auth token and every linkage record in a single
	// transaction. Callers never observe a partial clear.
	ClearAll(ctx context.Context) error
}
