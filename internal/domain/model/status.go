package model

import (
	"fmt"
	"time"
)

// SyncState represents the per-platform position in the sync state machine.
type SyncState string

const (
	SyncStateIdle         SyncState = "idle"
	SyncStateSyncing      SyncState = "syncing"
	SyncStateConnected    SyncState = "connected"
	SyncStateDisconnected SyncState = "disconnected"
)

// Disconnect reasons and error classifications surfaced in SyncStatus.Error.
// These are the only error strings ever exposed; raw failures never leak.
const (
	ErrNotLoggedIn            = "not_logged_in"
	ErrNotLoggedInToExtension = "not_logged_in_to_extension"
	ErrNotLoggedInToPlatform  = "not_logged_in_to_platform"
)

// HTTPError renders a backend rejection as the http_<status> classification.
func HTTPError(code int) string {
	return fmt.Sprintf("http_%d", code)
}

// SyncStatus is the last-known sync outcome for one platform. It is owned
// exclusively by the sync orchestrator; everyone else reads snapshots.
type SyncStatus struct {
	State    SyncState
	Syncing  bool
	LastSync *time.Time // nil until the first successful sync
	Error    string     // short classification string; empty when healthy
}

// InitialSyncStatus is the status every platform holds at process start and
// after logout reset (logout additionally records the not_logged_in reason).
func InitialSyncStatus() SyncStatus {
	return SyncStatus{State: SyncStateIdle}
}

// LoggedOutSyncStatus is the status applied to every platform by Logout.
func LoggedOutSyncStatus() SyncStatus {
	return SyncStatus{State: SyncStateDisconnected, Error: ErrNotLoggedIn}
}
