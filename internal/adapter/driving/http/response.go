package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SyncStatusResponse is the JSON representation of one platform's SyncStatus.
// It carries classification strings and timestamps only; credential material
// has no representation here by construction.
type SyncStatusResponse struct {
	State    string `json:"state"`
	Syncing  bool   `json:"syncing"`
	LastSync string `json:"last_sync,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StatusReply answers GetStatus. Installed and Version are populated on the
// external channel only, so a remote page can detect the daemon's presence.
type StatusReply struct {
	Instagram SyncStatusResponse `json:"instagram"`
	LinkedIn  SyncStatusResponse `json:"linkedin"`
	Installed bool               `json:"installed,omitempty"`
	Version   string             `json:"version,omitempty"`
}

// ManualSyncReply answers ManualSync with the post-sync status.
type ManualSyncReply struct {
	Success bool               `json:"success"`
	Status  SyncStatusResponse `json:"status"`
}

// AckReply answers commands with no payload beyond success.
type AckReply struct {
	Success bool `json:"success"`
}

// PresenceEntry reports session presence for one platform. Boolean only.
type PresenceEntry struct {
	HasSession bool `json:"hasSession"`
}

// PresenceReply answers CheckSessionPresence.
type PresenceReply struct {
	Instagram PresenceEntry `json:"instagram"`
	LinkedIn  PresenceEntry `json:"linkedin"`
}

// PingReply answers Ping on the external channel.
type PingReply struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version"`
}

// TriggerSyncReply answers TriggerSync with both platforms' statuses.
type TriggerSyncReply struct {
	Success   bool               `json:"success"`
	Instagram SyncStatusResponse `json:"instagram"`
	LinkedIn  SyncStatusResponse `json:"linkedin"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toSyncStatusResponse converts a domain SyncStatus to its JSON representation.
func toSyncStatusResponse(s model.SyncStatus) SyncStatusResponse {
	resp := SyncStatusResponse{
		State:   string(s.State),
		Syncing: s.Syncing,
		Error:   s.Error,
	}
	if s.LastSync != nil {
		resp.LastSync = s.LastSync.UTC().Format(time.RFC3339)
	}
	return resp
}

// toStatusReply builds a StatusReply from a status snapshot.
func toStatusReply(statuses map[model.Platform]model.SyncStatus) StatusReply {
	return StatusReply{
		Instagram: toSyncStatusResponse(statuses[model.PlatformInstagram]),
		LinkedIn:  toSyncStatusResponse(statuses[model.PlatformLinkedIn]),
	}
}
