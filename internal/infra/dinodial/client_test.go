package dinodial

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge/config"
	"concierge/internal/domain/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Dinodial: config.DinodialConfig{
			BaseURL:     server.URL,
			BearerToken: "service-token",
			Timeout:     5 * time.Second,
		},
	}

	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).(*Client)
}

func TestClient_MakeCall(t *testing.T) {
	var gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/make-call/", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"status":      "success",
			"status_code": 200,
			"data":        map[string]any{"id": 42, "status": "initiated"},
		})
	})

	callID, err := client.MakeCall(context.Background(), &service.CallRequest{PhoneNumber: "123"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), callID)
	assert.Equal(t, "Bearer service-token", gotAuth, "empty credential falls back to the service token")
}

func TestClient_MakeCall_PerCustomerCredential(t *testing.T) {
	var gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"call_id": 7},
		})
	})

	callID, err := client.MakeCall(context.Background(), &service.CallRequest{PhoneNumber: "123"}, "customer-token")
	require.NoError(t, err)
	assert.Equal(t, int64(7), callID, "legacy call_id field is honored")
	assert.Equal(t, "Bearer customer-token", gotAuth)
}

func TestClient_MakeCall_EnvelopeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "error",
			"message": "line busy",
		})
	})

	_, err := client.MakeCall(context.Background(), &service.CallRequest{PhoneNumber: "123"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line busy")
}

func TestClient_ListCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calls/list/", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"results": []map[string]any{
					{"id": 1, "status": "completed"},
					{"id": 2, "status": "in_progress"},
				},
			},
		})
	})

	calls, err := client.ListCalls(context.Background(), service.ListCallsParams{Page: 1, Limit: 50}, "")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, int64(1), calls[0].ID)
	assert.Equal(t, "completed", calls[0].Status)
}

func TestClient_CallDetail_KeepsRawPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/call/detail/9/", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"id":           9,
				"status":       "completed",
				"phone_number": "15551234567",
				"result":       map[string]any{"arrival_status": "arrived"},
			},
		})
	})

	detail, err := client.CallDetail(context.Background(), 9, "")
	require.NoError(t, err)
	assert.Equal(t, int64(9), detail.ID)
	assert.True(t, detail.Completed())
	assert.Equal(t, "15551234567", detail.Raw["phone_number"])
}

func TestClient_CallDetail_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.CallDetail(context.Background(), 404, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call not found")
}

func TestClient_RecordingURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"url": "https://cdn.example.com/rec/3.mp3"},
		})
	})

	url, err := client.RecordingURL(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/rec/3.mp3", url)
}

func TestClient_RecordingURL_NotReady(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.RecordingURL(context.Background(), 3, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording url not found")
}

func TestClient_MissingToken(t *testing.T) {
	cfg := &config.Config{Dinodial: config.DinodialConfig{BaseURL: "http://localhost:1"}}
	client := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).(*Client)

	_, err := client.MakeCall(context.Background(), &service.CallRequest{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bearer token not configured")
}
