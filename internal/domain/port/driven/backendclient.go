package driven

import (
	"context"
	"fmt"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// StatusError reports a non-2xx response from the backend. The orchestrator
// maps it to the http_<status> disconnect reason; nothing beyond the numeric
// status is ever surfaced.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend rejected request with status %d", e.Code)
}

// BackendClient defines the driven port for the account-linking API. Both
// calls POST the same CredentialBundle payload under the same bearer token;
// only the endpoint differs. Neither call retries: one trigger, one attempt.
type BackendClient interface {
	// Connect creates a new backend-linked account for the platform.
	Connect(ctx context.Context, platform model.Platform, token string, bundle model.CredentialBundle) (*model.SyncResult, error)

	// Refresh updates the existing link identified by accountID.
	Refresh(ctx context.Context, platform model.Platform, accountID, token string, bundle model.CredentialBundle) (*model.SyncResult, error)
}
