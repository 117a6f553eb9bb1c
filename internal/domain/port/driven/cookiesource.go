package driven

import (
	"context"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// CookieSource defines the driven port for reading session cookies from the
// local browser profile. Implementations are read-only and side-effect free.
type CookieSource interface {
	// Read captures the declared cookies for the platform's domain into a
	// CredentialBundle. Cookies missing from the store are absent from the
	// bundle; an unavailable store yields an all-absent bundle rather than
	// an error, since "cannot read cookies" and "not logged in" are the same
	// condition from the sync engine's point of view.
	Read(ctx context.Context, platform model.Platform) (model.CredentialBundle, error)
}
