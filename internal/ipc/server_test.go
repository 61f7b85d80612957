package ipc

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/corewm/corewm/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastDeliversToAllSubscribers(t *testing.T) {
	h := NewHub()
	id1, ch1 := h.Subscribe()
	id2, ch2 := h.Subscribe()
	defer h.Unsubscribe(id1)
	defer h.Unsubscribe(id2)

	h.Broadcast(engine.WmEvent{Kind: engine.EvApplicationExiting})

	assert.Equal(t, engine.EvApplicationExiting, (<-ch1).Kind)
	assert.Equal(t, engine.EvApplicationExiting, (<-ch2).Kind)
}

func TestHubBroadcastDropsForFullSlowSubscriber(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Broadcast(engine.WmEvent{Kind: engine.EvApplicationExiting})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestServerRoundTripsCommandAndEvent(t *testing.T) {
	hub := NewHub()
	commands := make(chan engine.Command, 4)
	s := NewServer(Config{}, hub, commands)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	closeCmd, err := json.Marshal(map[string]string{"type": "close"})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, closeCmd))

	select {
	case cmd := <-commands:
		assert.Equal(t, engine.CmdClose, cmd.Kind)
	case <-ctx.Done():
		t.Fatal("timed out waiting for forwarded command")
	}

	hub.Broadcast(engine.WmEvent{Kind: engine.EvApplicationExiting})

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "application_exiting", decoded["type"])
}

func TestServerIgnoresInvalidCommandJSON(t *testing.T) {
	hub := NewHub()
	commands := make(chan engine.Command, 4)
	s := NewServer(Config{}, hub, commands)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))

	select {
	case <-commands:
		t.Fatal("malformed command should not have been forwarded")
	case <-time.After(200 * time.Millisecond):
	}
}
