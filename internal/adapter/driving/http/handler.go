// Package httphandler is the HTTP driving adapter: it routes inbound sync
// commands from the internal (trusted) and external (origin-gated) channels
// to the application layer.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/application"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// Handler dispatches inbound commands to the sync orchestrator and status
// tracker. Commands that cause a sync hold the reply open until the attempt,
// network call included, has completed: callers read the resulting status
// from the response instead of polling.
type Handler struct {
	syncSvc *application.SyncService
	tracker *application.StatusTracker
	version string
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(syncSvc *application.SyncService, tracker *application.StatusTracker, version string, logger *slog.Logger) *Handler {
	return &Handler{
		syncSvc: syncSvc,
		tracker: tracker,
		version: version,
		logger:  logger,
	}
}

// NewInternalMux creates the internal channel's http.Handler. The internal
// channel is trusted (it binds to loopback for the daemon's own UI surface)
// and performs no origin checks.
func NewInternalMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/commands", h.InternalCommand)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// NewExternalMux creates the external channel's http.Handler. Every request
// passes the origin allow-list before any command is decoded.
func NewExternalMux(h *Handler, allowedOrigins []string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/commands", h.ExternalCommand)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	wrapped := recoveryMiddleware(logger, mux)
	wrapped = originMiddleware(allowedOrigins, logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// InternalCommand decodes and dispatches one internal channel command.
func (h *Handler) InternalCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := decodeInternalCommand(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	switch c := cmd.(type) {
	case getStatusCommand:
		writeJSON(w, http.StatusOK, toStatusReply(h.tracker.Snapshot()))

	case manualSyncCommand:
		status := h.syncSvc.Sync(ctx, c.Platform)
		writeJSON(w, http.StatusOK, ManualSyncReply{
			Success: status.State == model.SyncStateConnected,
			Status:  toSyncStatusResponse(status),
		})

	case setAuthTokenCommand:
		if err := h.syncSvc.SetAuthToken(ctx, c.Token); err != nil {
			h.logger.Error("failed to store auth token", "error", err)
			writeJSON(w, http.StatusOK, AckReply{Success: false})
			return
		}
		writeJSON(w, http.StatusOK, AckReply{Success: true})

	case logoutCommand:
		if err := h.syncSvc.Logout(ctx); err != nil {
			h.logger.Error("logout failed", "error", err)
			writeJSON(w, http.StatusOK, AckReply{Success: false})
			return
		}
		writeJSON(w, http.StatusOK, AckReply{Success: true})

	case checkPresenceCommand:
		writeJSON(w, http.StatusOK, toPresenceReply(h.syncSvc.CheckPresence(ctx)))
	}
}

// ExternalCommand decodes and dispatches one external channel command. The
// origin allow-list has already passed by the time this runs.
func (h *Handler) ExternalCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := decodeExternalCommand(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	switch c := cmd.(type) {
	case pingCommand:
		writeJSON(w, http.StatusOK, PingReply{Installed: true, Version: h.version})

	case getStatusCommand:
		reply := toStatusReply(h.tracker.Snapshot())
		reply.Installed = true
		reply.Version = h.version
		writeJSON(w, http.StatusOK, reply)

	case setAuthTokenCommand:
		if err := h.syncSvc.SetAuthToken(ctx, c.Token); err != nil {
			h.logger.Error("failed to store auth token", "error", err)
			writeJSON(w, http.StatusOK, AckReply{Success: false})
			return
		}
		writeJSON(w, http.StatusOK, AckReply{Success: true})

	case checkPresenceCommand:
		writeJSON(w, http.StatusOK, toPresenceReply(h.syncSvc.CheckPresence(ctx)))

	case triggerSyncCommand:
		success := true
		for _, p := range c.Platforms {
			if h.syncSvc.Sync(ctx, p).State != model.SyncStateConnected {
				success = false
			}
		}
		reply := TriggerSyncReply{Success: success}
		statuses := h.tracker.Snapshot()
		reply.Instagram = toSyncStatusResponse(statuses[model.PlatformInstagram])
		reply.LinkedIn = toSyncStatusResponse(statuses[model.PlatformLinkedIn])
		writeJSON(w, http.StatusOK, reply)
	}
}

// Health answers the liveness probe on both channels.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// toPresenceReply converts the presence map to its JSON representation.
func toPresenceReply(presence map[model.Platform]bool) PresenceReply {
	return PresenceReply{
		Instagram: PresenceEntry{HasSession: presence[model.PlatformInstagram]},
		LinkedIn:  PresenceEntry{HasSession: presence[model.PlatformLinkedIn]},
	}
}
