package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thewherewhat/internal/config"
	"thewherewhat/internal/engine"
	"thewherewhat/internal/models"
	"thewherewhat/internal/utils"
	"thewherewhat/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHarness(t *testing.T, stores engine.Stores) (*http.ServeMux, *utils.MetricsCollector) {
	t.Helper()

	system := actor.NewActorSystem()
	hub := websocket.NewHub()
	go hub.Run()

	metrics := utils.NewMetricsCollector()
	eng := engine.NewEngine(system, 24*time.Hour, stores, hub, metrics)

	server := NewServer(system, system.Root, eng, hub, nil, nil, metrics, config.DefaultMapConfig())
	return server.Routes(), metrics
}

func newTestServer(t *testing.T) *http.ServeMux {
	mux, _ := newTestHarness(t, engine.Stores{})
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, clientToken string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Fingerprint", clientToken)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	// Array responses are decoded by the caller; decoded stays nil for them.
	var decoded map[string]interface{}
	if recorder.Body.Len() > 0 {
		_ = json.Unmarshal(recorder.Body.Bytes(), &decoded)
	}
	return recorder, decoded
}

func TestBubbleEndpoints(t *testing.T) {
	mux := newTestServer(t)

	// Empty map to start
	recorder, _ := doJSON(t, mux, http.MethodGet, "/api/bubbles", "client-x", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "[]", recorder.Body.String())

	// client-x drops a bubble
	recorder, created := doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 52.37, "lng": 4.90, "title": "Coffee here", "caption": "Great espresso",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	bubbleID := created["id"].(string)
	assert.Equal(t, float64(0), created["score"])

	votePath := fmt.Sprintf("/api/bubbles/%s/vote", bubbleID)

	// client-y upvotes
	recorder, voted := doJSON(t, mux, http.MethodPost, votePath, "client-y", map[string]int{"vote": 1})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), voted["newScore"])
	assert.Equal(t, float64(1), voted["yourVote"])

	// Repeating the same vote is a 400 with a branchable code
	recorder, dup := doJSON(t, mux, http.MethodPost, votePath, "client-y", map[string]int{"vote": 1})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, utils.ErrDuplicateVote, dup["code"])

	// Reversal swings the score by two
	recorder, reversed := doJSON(t, mux, http.MethodPost, votePath, "client-y", map[string]int{"vote": -1})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(-1), reversed["newScore"])

	// Creator self-vote is forbidden
	recorder, _ = doJSON(t, mux, http.MethodPost, votePath, "client-x", map[string]int{"vote": 1})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// Vote lookup reflects client-y's current state
	recorder, current := doJSON(t, mux, http.MethodGet, votePath, "client-y", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(-1), current["vote"])

	// The bubble shows up in the visible list with its final score
	recorder, _ = doJSON(t, mux, http.MethodGet, "/api/bubbles", "client-x", nil)
	var bubbles []map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &bubbles))
	require.Len(t, bubbles, 1)
	assert.Equal(t, float64(-1), bubbles[0]["score"])
}

func TestVoteOnUnknownBubble(t *testing.T) {
	mux := newTestServer(t)

	recorder, body := doJSON(t, mux, http.MethodPost, "/api/bubbles/not-a-uuid/vote", "client-y", map[string]int{"vote": 1})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, utils.ErrNotFound, body["code"])

	recorder, body = doJSON(t, mux, http.MethodPost, "/api/bubbles/5e0374f3-3b0a-4f6a-9bb8-111111111111/vote", "client-y", map[string]int{"vote": 1})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, utils.ErrNotFound, body["code"])
}

func TestCreateBubbleRejectsBadInput(t *testing.T) {
	mux := newTestServer(t)

	recorder, body := doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 52.37, "lng": 4.90, "title": "",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, utils.ErrInvalidInput, body["code"])

	recorder, body = doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 123.0, "lng": 4.90, "title": "Off the map",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, utils.ErrInvalidInput, body["code"])

	// Absent coordinates are not the same as coordinates at 0,0.
	recorder, body = doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"title": "No coordinates",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, utils.ErrInvalidInput, body["code"])

	recorder, body = doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 52.37, "title": "Half the coordinates",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, utils.ErrInvalidInput, body["code"])

	// Nothing leaked onto the map.
	recorder, _ = doJSON(t, mux, http.MethodGet, "/api/bubbles", "client-x", nil)
	assert.JSONEq(t, "[]", recorder.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestServer(t)

	recorder, body := doJSON(t, mux, http.MethodGet, "/health", "client-x", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["bubbles"])
	assert.Equal(t, float64(0), body["viewers"])
}

// brokenDeleteStore persists everything in the void but refuses deletes,
// which is how a Mongo outage mid-sweep looks to the engine.
type brokenDeleteStore struct{}

func (brokenDeleteStore) LoadBubbles(ctx context.Context) ([]*models.Bubble, error) { return nil, nil }
func (brokenDeleteStore) LoadVotes(ctx context.Context) ([]*models.Vote, error)     { return nil, nil }
func (brokenDeleteStore) SaveBubble(ctx context.Context, bubble *models.Bubble) error {
	return nil
}
func (brokenDeleteStore) SaveVote(ctx context.Context, vote *models.Vote) error { return nil }
func (brokenDeleteStore) DeleteBubbles(ctx context.Context, ids []uuid.UUID) error {
	return errors.New("connection reset")
}
func (brokenDeleteStore) DeleteVotesForBubbles(ctx context.Context, bubbleIDs []uuid.UUID) error {
	return nil
}

func TestCleanupStorageFailure(t *testing.T) {
	mux, _ := newTestHarness(t, engine.Stores{Bubbles: brokenDeleteStore{}})

	doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 48.85, "lng": 2.35, "title": "Wrong city",
	})

	recorder, body := doJSON(t, mux, http.MethodPost, "/api/cleanup", "client-x", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, utils.ErrStorage, body["code"])

	// The bubble survives; the engine never drops state it failed to delete.
	recorder, _ = doJSON(t, mux, http.MethodGet, "/api/bubbles", "client-x", nil)
	var bubbles []map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &bubbles))
	assert.Len(t, bubbles, 1)
}

func TestRequestCounting(t *testing.T) {
	mux, metrics := newTestHarness(t, engine.Stores{})

	_, created := doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 52.37, "lng": 4.90, "title": "Counted",
	})
	doJSON(t, mux, http.MethodGet, "/api/bubbles", "client-x", nil)
	doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/bubbles/%s/vote", created["id"].(string)), "client-y", nil)
	doJSON(t, mux, http.MethodGet, "/api/suggestions", "client-x", nil)

	// Reads count the same as writes.
	assert.Equal(t, uint64(4), metrics.RequestCount())
}

func TestCleanupEndpoint(t *testing.T) {
	mux := newTestServer(t)

	doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 52.37, "lng": 4.90, "title": "In town",
	})
	doJSON(t, mux, http.MethodPost, "/api/bubbles", "client-x", map[string]interface{}{
		"lat": 48.85, "lng": 2.35, "title": "Wrong city",
	})

	recorder, body := doJSON(t, mux, http.MethodPost, "/api/cleanup", "client-x", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["deleted"])
}
