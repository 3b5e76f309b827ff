package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"thewherewhat/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastEventEnvelope(t *testing.T) {
	hub := NewHub()

	bubble := &models.Bubble{ID: uuid.New(), Title: "Test", Lat: 52.37, Lng: 4.90}
	hub.BroadcastEvent(Event{Type: EventNewBubble, Bubble: bubble})

	select {
	case payload := <-hub.Broadcast:
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Equal(t, EventNewBubble, decoded["type"])
		assert.NotNil(t, decoded["bubble"])
		// Empty fields stay off the wire.
		assert.NotContains(t, decoded, "suggestion")
	case <-time.After(time.Second):
		t.Fatal("no event queued")
	}
}

func TestBroadcastEventBareType(t *testing.T) {
	hub := NewHub()
	hub.BroadcastEvent(Event{Type: EventDecayTick})

	payload := <-hub.Broadcast
	assert.JSONEq(t, `{"type":"decay_tick"}`, string(payload))
}

func TestHubTracksViewers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	assert.Equal(t, 0, hub.ViewerCount())

	client := &Client{Hub: hub, Send: make(chan []byte, 1)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.ViewerCount() == 1 }, time.Second, 10*time.Millisecond)

	// Registered viewers receive broadcasts.
	hub.BroadcastEvent(Event{Type: EventCleanup})
	select {
	case payload := <-client.Send:
		assert.JSONEq(t, `{"type":"cleanup"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("viewer never received the broadcast")
	}

	hub.Unregister <- client
	require.Eventually(t, func() bool { return hub.ViewerCount() == 0 }, time.Second, 10*time.Millisecond)
}
