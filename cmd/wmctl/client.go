package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/engine"
)

// client is a thin WebSocket wrapper around a wmd IPC connection,
// mirroring the read/write-pump split internal/ipc.Server uses on the
// daemon side.
type client struct {
	conn *websocket.Conn
	ctx  context.Context
}

func dial(addr string) (*client, error) {
	ctx := context.Background()
	conn, _, err := websocket.Dial(ctx, "ws://"+addr+"/ws", nil)
	if err != nil {
		return nil, err
	}
	return &client{conn: conn, ctx: ctx}, nil
}

func (c *client) Send(cmd engine.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return c.conn.Write(c.ctx, websocket.MessageText, data)
}

// ReadRawEvent blocks for the next wire-format WmEvent JSON message or
// until timeout elapses. wmctl prints events as received rather than
// reconstructing an engine.WmEvent client-side: WmEvent only defines
// MarshalJSON (the daemon is always the sender on that side of the
// wire), so a generic client renders the JSON directly instead of
// guessing a matching Go shape for every event kind.
func (c *client) ReadRawEvent(timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

func configPath() (string, error) {
	return config.Path()
}
