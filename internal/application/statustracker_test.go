package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/application"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

func TestStatusTracker_InitialState(t *testing.T) {
	tracker := application.NewStatusTracker()

	for _, p := range model.Platforms {
		status := tracker.Get(p)
		assert.Equal(t, model.SyncStateIdle, status.State)
		assert.False(t, status.Syncing)
		assert.Nil(t, status.LastSync)
		assert.Empty(t, status.Error)
	}
}

func TestStatusTracker_SetAndGet(t *testing.T) {
	tracker := application.NewStatusTracker()
	now := time.Now().UTC()

	tracker.Set(model.PlatformInstagram, model.SyncStatus{State: model.SyncStateConnected, LastSync: &now})

	assert.Equal(t, model.SyncStateConnected, tracker.Get(model.PlatformInstagram).State)
	assert.Equal(t, model.SyncStateIdle, tracker.Get(model.PlatformLinkedIn).State)
}

func TestStatusTracker_SnapshotIsACopy(t *testing.T) {
	tracker := application.NewStatusTracker()

	snapshot := tracker.Snapshot()
	snapshot[model.PlatformInstagram] = model.SyncStatus{State: model.SyncStateSyncing}

	assert.Equal(t, model.SyncStateIdle, tracker.Get(model.PlatformInstagram).State)
}

func TestStatusTracker_Reset(t *testing.T) {
	tracker := application.NewStatusTracker()
	now := time.Now().UTC()
	tracker.Set(model.PlatformInstagram, model.SyncStatus{State: model.SyncStateConnected, LastSync: &now})

	tracker.Reset(model.LoggedOutSyncStatus())

	for _, p := range model.Platforms {
		status := tracker.Get(p)
		assert.Equal(t, model.SyncStateDisconnected, status.State)
		assert.Equal(t, model.ErrNotLoggedIn, status.Error)
		assert.Nil(t, status.LastSync)
	}
}
