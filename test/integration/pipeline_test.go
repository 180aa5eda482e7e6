package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Abrar090909/webhook-repo/internal/core/storage/storetest"
	"github.com/Abrar090909/webhook-repo/internal/ingestion"
	"github.com/Abrar090909/webhook-repo/internal/query"
	"github.com/Abrar090909/webhook-repo/internal/server"
)

// newStack wires the full HTTP surface (server + ingestion + query) over an
// in-memory store, so the end-to-end contract runs without a live database.
func newStack() http.Handler {
	gin.SetMode(gin.TestMode)

	store := storetest.NewMemoryStore()
	srv := server.New(":0", store, "release")
	ingestion.NewService(store, 1).RegisterRoutes(srv.Engine)
	query.NewService(store).RegisterRoutes(srv.Engine)
	return srv.Engine
}

func do(t *testing.T, h http.Handler, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return resp.Code, out
}

// The canonical scenario: ingest once, observe it, re-POST with the
// returned request_id, observe dedup, and confirm the record count held.
func TestPipeline_IngestDeduplicateQuery(t *testing.T) {
	h := newStack()

	payload := map[string]any{
		"event_type": "push",
		"author":     "alice",
		"branch":     "main",
		"timestamp":  "2026-01-30T10:00:00Z",
	}

	code, body := do(t, h, http.MethodPost, "/webhook", payload)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "success", body["status"])

	requestID, _ := body["request_id"].(string)
	require.NotEmpty(t, requestID)

	code, body = do(t, h, http.MethodGet, "/api/events?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, body["count"])

	events := body["events"].([]any)
	first := events[0].(map[string]any)
	require.Equal(t, requestID, first["request_id"])
	require.Equal(t, "push", first["event_type"])
	require.Equal(t, "alice", first["author"])
	require.Equal(t, "main", first["branch"])

	// Replay with the server-assigned id: a soft success, not a new record.
	payload["request_id"] = requestID
	code, body = do(t, h, http.MethodPost, "/webhook", payload)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "duplicate", body["status"])
	require.Equal(t, requestID, body["request_id"])

	code, body = do(t, h, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, body["count"])
}

func TestPipeline_IncrementalPolling(t *testing.T) {
	h := newStack()

	base := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	for i, author := range []string{"alice", "bob", "carol"} {
		code, _ := do(t, h, http.MethodPost, "/webhook", map[string]any{
			"event_type": "push",
			"author":     author,
			"branch":     "main",
			"timestamp":  base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, code)
	}

	// Watermark at the second event: only the third is newer.
	since := base.Add(time.Minute).Format(time.RFC3339)
	code, body := do(t, h, http.MethodGet, "/api/events?since="+since, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, body["count"])

	events := body["events"].([]any)
	require.Equal(t, "carol", events[0].(map[string]any)["author"])
}

func TestPipeline_ClearThenQueryEmpty(t *testing.T) {
	h := newStack()

	for i := 0; i < 3; i++ {
		code, _ := do(t, h, http.MethodPost, "/webhook", map[string]any{
			"event_type":  "merge",
			"author":      "alice",
			"from_branch": "feature",
			"to_branch":   "main",
			"timestamp":   time.Date(2026, 1, 30, 10, i, 0, 0, time.UTC).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, code)
	}

	code, body := do(t, h, http.MethodPost, "/api/clear", nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, body["deleted_count"])

	code, body = do(t, h, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 0, body["count"])
}

func TestPipeline_UnknownEndpoint(t *testing.T) {
	h := newStack()

	code, body := do(t, h, http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Endpoint not found", body["error"])
}
