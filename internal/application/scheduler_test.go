package application_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/application"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// --- Mock implementations ---

type syncCall struct {
	Platform model.Platform
	At       time.Time
}

type mockSyncer struct {
	mu       sync.Mutex
	calls    []syncCall
	allCalls int
}

func (m *mockSyncer) Sync(_ context.Context, p model.Platform) model.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, syncCall{Platform: p, At: time.Now()})
	return model.SyncStatus{State: model.SyncStateConnected}
}

func (m *mockSyncer) SyncAll(ctx context.Context) map[model.Platform]model.SyncStatus {
	m.mu.Lock()
	m.allCalls++
	m.mu.Unlock()

	statuses := make(map[model.Platform]model.SyncStatus)
	for _, p := range model.Platforms {
		statuses[p] = model.SyncStatus{State: model.SyncStateConnected}
	}
	return statuses
}

func (m *mockSyncer) recorded() []syncCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]syncCall(nil), m.calls...)
}

func (m *mockSyncer) fallbackCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allCalls
}

type mockWatcher struct {
	ch chan model.Platform
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{ch: make(chan model.Platform, 16)}
}

func (w *mockWatcher) Events() <-chan model.Platform { return w.ch }

func (w *mockWatcher) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// --- Tests ---

func TestScheduler_CoalescesBurstIntoOneSync(t *testing.T) {
	syncer := &mockSyncer{}
	watcher := newMockWatcher()
	const quiet = 80 * time.Millisecond
	s := application.NewScheduler(syncer, watcher, quiet, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// A burst of notifications, each inside the previous quiet window.
	var lastNotify time.Time
	for i := 0; i < 5; i++ {
		watcher.ch <- model.PlatformInstagram
		lastNotify = time.Now()
		time.Sleep(quiet / 4)
	}

	require.Eventually(t, func() bool { return len(syncer.recorded()) == 1 }, 2*time.Second, 10*time.Millisecond)

	// No second invocation arrives afterwards.
	time.Sleep(2 * quiet)
	calls := syncer.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, model.PlatformInstagram, calls[0].Platform)

	// Trailing edge: the sync is scheduled from the final notification.
	assert.GreaterOrEqual(t, calls[0].At.Sub(lastNotify), quiet-10*time.Millisecond)
}

func TestScheduler_PlatformsDebounceIndependently(t *testing.T) {
	syncer := &mockSyncer{}
	watcher := newMockWatcher()
	s := application.NewScheduler(syncer, watcher, 50*time.Millisecond, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	watcher.ch <- model.PlatformInstagram
	watcher.ch <- model.PlatformLinkedIn

	require.Eventually(t, func() bool { return len(syncer.recorded()) == 2 }, 2*time.Second, 10*time.Millisecond)

	seen := make(map[model.Platform]bool)
	for _, c := range syncer.recorded() {
		seen[c.Platform] = true
	}
	assert.True(t, seen[model.PlatformInstagram])
	assert.True(t, seen[model.PlatformLinkedIn])
}

func TestScheduler_FallbackFiresWithoutNotifications(t *testing.T) {
	syncer := &mockSyncer{}
	watcher := newMockWatcher()
	// cron.Every rounds sub-second intervals up to one second.
	s := application.NewScheduler(syncer, watcher, 50*time.Millisecond, time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return syncer.fallbackCount() >= 1 }, 5*time.Second, 50*time.Millisecond)
	assert.Empty(t, syncer.recorded())
}

func TestScheduler_NotifyRestartsPendingTimer(t *testing.T) {
	syncer := &mockSyncer{}
	watcher := newMockWatcher()
	const quiet = 100 * time.Millisecond
	s := application.NewScheduler(syncer, watcher, quiet, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Notify(model.PlatformLinkedIn)
	time.Sleep(quiet / 2)
	require.Empty(t, syncer.recorded())

	s.Notify(model.PlatformLinkedIn)
	time.Sleep(3 * quiet / 4)
	// Still inside the restarted window: the original timer must not fire.
	require.Empty(t, syncer.recorded())

	require.Eventually(t, func() bool { return len(syncer.recorded()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_SurvivesWatcherClose(t *testing.T) {
	syncer := &mockSyncer{}
	watcher := newMockWatcher()
	s := application.NewScheduler(syncer, watcher, 50*time.Millisecond, time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	close(watcher.ch)

	// The fallback schedule keeps syncs alive after the watcher is gone.
	require.Eventually(t, func() bool { return syncer.fallbackCount() >= 1 }, 5*time.Second, 50*time.Millisecond)
}
