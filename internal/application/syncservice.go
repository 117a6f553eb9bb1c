package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

// SyncService is the sync orchestrator: per platform it decides whether a
// sync is possible, performs the single outbound attempt, and records the
// outcome in the StatusTracker.
//
// Invocations for the same platform are serialized behind a per-platform
// mutex, so a manual trigger racing a debounce-fired sync runs after it
// rather than concurrently; linkage records can therefore never be written
// twice with different identifiers. Platforms do not block each other.
type SyncService struct {
	cookies  driven.CookieSource
	settings driven.SettingsStore
	backend  driven.BackendClient
	status   *StatusTracker
	logger   *slog.Logger

	locks map[model.Platform]*sync.Mutex
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	cookies driven.CookieSource,
	settings driven.SettingsStore,
	backend driven.BackendClient,
	status *StatusTracker,
	logger *slog.Logger,
) *SyncService {
	locks := make(map[model.Platform]*sync.Mutex, len(model.Platforms))
	for _, p := range model.Platforms {
		locks[p] = &sync.Mutex{}
	}
	return &SyncService{
		cookies:  cookies,
		settings: settings,
		backend:  backend,
		status:   status,
		logger:   logger,
		locks:    locks,
	}
}

// Sync runs one sync attempt for the platform and returns the resulting
// status. Failures are terminal for this attempt; recovery waits for the
// next trigger. A previously recorded last-sync timestamp survives every
// failure path, so "was synced before, now failing" stays distinguishable
// from "never synced".
func (s *SyncService) Sync(ctx context.Context, platform model.Platform) model.SyncStatus {
	s.locks[platform].Lock()
	defer s.locks[platform].Unlock()

	lastSync := s.status.Get(platform).LastSync

	token, err := s.settings.AuthToken(ctx)
	if err != nil || token == "" {
		return s.fail(platform, lastSync, model.ErrNotLoggedInToExtension)
	}

	bundle, err := s.cookies.Read(ctx, platform)
	if err != nil || !bundle.HasPresenceCookie(platform) {
		return s.fail(platform, lastSync, model.ErrNotLoggedInToPlatform)
	}

	s.status.Set(platform, model.SyncStatus{
		State:    model.SyncStateSyncing,
		Syncing:  true,
		LastSync: lastSync,
	})

	// Endpoint selection is re-read from the store on every attempt so a
	// successful connect immediately switches later attempts to refresh.
	accountID, err := s.settings.Linkage(ctx, platform)
	if err != nil {
		s.logger.Error("linkage read failed", "platform", platform)
		return s.fail(platform, lastSync, "storage_error")
	}

	var result *model.SyncResult
	if accountID == "" {
		result, err = s.backend.Connect(ctx, platform, token, bundle)
	} else {
		result, err = s.backend.Refresh(ctx, platform, accountID, token, bundle)
	}
	if err != nil {
		var statusErr *driven.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Warn("sync rejected", "platform", platform, "status", statusErr.Code)
			return s.fail(platform, lastSync, model.HTTPError(statusErr.Code))
		}
		s.logger.Warn("sync transport failure", "platform", platform)
		return s.fail(platform, lastSync, "network_error")
	}

	if result.AccountID != "" && accountID == "" {
		if err := s.settings.PersistLinkage(ctx, platform, result.AccountID); err != nil {
			s.logger.Error("linkage persist failed", "platform", platform)
		} else {
			s.logger.Info("platform linked", "platform", platform)
		}
	}

	now := time.Now().UTC()
	status := model.SyncStatus{
		State:    model.SyncStateConnected,
		LastSync: &now,
	}
	s.status.Set(platform, status)
	s.logger.Info("sync complete", "platform", platform, "backend_status", result.Status)
	return status
}

// SyncAll runs one sync attempt for every platform and returns the resulting
// statuses. Used by the fallback schedule and the external trigger-all command.
func (s *SyncService) SyncAll(ctx context.Context) map[model.Platform]model.SyncStatus {
	statuses := make(map[model.Platform]model.SyncStatus, len(model.Platforms))
	for _, p := range model.Platforms {
		statuses[p] = s.Sync(ctx, p)
	}
	return statuses
}

// SetAuthToken stores the bearer token delivered by the external login flow.
func (s *SyncService) SetAuthToken(ctx context.Context, token string) error {
	return s.settings.SetAuthToken(ctx, token)
}

// Logout clears the auth token and every linkage record, then resets all
// platform statuses. The per-platform locks are taken first, so an in-flight
// sync finishes publishing its status before the reset lands and the
// post-logout state is deterministic. Calling Logout when already logged out
// is a no-op that still succeeds.
func (s *SyncService) Logout(ctx context.Context) error {
	for _, p := range model.Platforms {
		s.locks[p].Lock()
		defer s.locks[p].Unlock()
	}

	if err := s.settings.ClearAll(ctx); err != nil {
		return err
	}

	s.status.Reset(model.LoggedOutSyncStatus())
	s.logger.Info("logged out")
	return nil
}

// CheckPresence reports, per platform, whether the presence cookie exists.
// Only booleans leave this method; cookie values never do.
func (s *SyncService) CheckPresence(ctx context.Context) map[model.Platform]bool {
	presence := make(map[model.Platform]bool, len(model.Platforms))
	for _, p := range model.Platforms {
		bundle, err := s.cookies.Read(ctx, p)
		presence[p] = err == nil && bundle.HasPresenceCookie(p)
	}
	return presence
}

// fail records a disconnected status carrying the given classification and
// the preserved last-sync timestamp.
func (s *SyncService) fail(platform model.Platform, lastSync *time.Time, reason string) model.SyncStatus {
	status := model.SyncStatus{
		State:    model.SyncStateDisconnected,
		LastSync: lastSync,
		Error:    reason,
	}
	s.status.Set(platform, status)
	return status
}
