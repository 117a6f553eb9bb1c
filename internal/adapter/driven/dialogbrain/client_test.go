package dialogbrain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

func testBundle() model.CredentialBundle {
	return model.CredentialBundle{
		Cookies:   map[string]string{"sessionid": "sess-value", "csrftoken": "csrf-value"},
		UserAgent: "test-agent/1.0",
	}
}

func TestClient_ConnectPostsFlatBundle(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"account_id": "acct-42", "status": "connected"}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	result, err := client.Connect(context.Background(), model.PlatformInstagram, "tok-abc", testBundle())
	require.NoError(t, err)

	assert.Equal(t, "/api/channels/instagram/accounts/connect/cookie", gotPath)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "sess-value", gotBody["sessionid"])
	assert.Equal(t, "csrf-value", gotBody["csrftoken"])
	assert.Equal(t, "test-agent/1.0", gotBody["userAgent"])
	assert.Equal(t, "acct-42", result.AccountID)
	assert.Equal(t, "connected", result.Status)
}

func TestClient_RefreshTargetsAccountEndpoint(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	result, err := client.Refresh(context.Background(), model.PlatformLinkedIn, "acct-42", "tok-abc", testBundle())
	require.NoError(t, err)

	assert.Equal(t, "/api/channels/linkedin/accounts/acct-42/sync-cookie", gotPath)
	assert.Equal(t, "", result.AccountID)
}

func TestClient_StatusDefaultsToConnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account_id": "acct-1"}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	result, err := client.Connect(context.Background(), model.PlatformInstagram, "tok", testBundle())
	require.NoError(t, err)
	assert.Equal(t, "connected", result.Status)
}

func TestClient_NonSuccessStatusIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	_, err := client.Connect(context.Background(), model.PlatformInstagram, "tok", testBundle())

	var statusErr *driven.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	client := NewClientWithHTTPClient(&http.Client{}, srv.URL)

	_, err := client.Connect(context.Background(), model.PlatformInstagram, "tok", testBundle())
	require.Error(t, err)

	var statusErr *driven.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_EmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	result, err := client.Connect(context.Background(), model.PlatformInstagram, "tok", testBundle())
	require.NoError(t, err)
	assert.Equal(t, "connected", result.Status)
}
