// Package application contains use-case orchestration services.
package application

import (
	"sync"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// StatusTracker holds the last-known SyncStatus per platform. It is mutated
// only by the sync orchestrator (and the logout reset); every other component
// reads snapshots.
type StatusTracker struct {
	mu       sync.RWMutex
	statuses map[model.Platform]model.SyncStatus
}

// NewStatusTracker creates a tracker with every platform in the initial
// idle state.
func NewStatusTracker() *StatusTracker {
	statuses := make(map[model.Platform]model.SyncStatus, len(model.Platforms))
	for _, p := range model.Platforms {
		statuses[p] = model.InitialSyncStatus()
	}
	return &StatusTracker{statuses: statuses}
}

// Get returns the current status for one platform.
func (t *StatusTracker) Get(platform model.Platform) model.SyncStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.statuses[platform]
}

// Set replaces the status for one platform.
func (t *StatusTracker) Set(platform model.Platform, status model.SyncStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[platform] = status
}

// Snapshot returns a copy of every platform's status.
func (t *StatusTracker) Snapshot() map[model.Platform]model.SyncStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[model.Platform]model.SyncStatus, len(t.statuses))
	for p, s := range t.statuses {
		snapshot[p] = s
	}
	return snapshot
}

// Reset sets every platform to the given status in one critical section.
func (t *StatusTracker) Reset(status model.SyncStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range model.Platforms {
		t.statuses[p] = status
	}
}
