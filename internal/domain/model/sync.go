package model

// SyncResult is the backend's response to a successful sync request.
type SyncResult struct {
	// AccountID is the backend-assigned account identifier. Populated by the
	// connect endpoint on first link; may be empty on refresh responses.
	AccountID string

	// Status is the backend's view of the link. The backend may omit it, in
	// which case it defaults to "connected".
	Status string
}
