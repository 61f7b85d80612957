// Package ipc exposes the engine's command/event stream over a
// plaintext WebSocket, grounded in the teacher's internal/web package:
// one goroutine per client connection reading client input and one
// writing server output, the same shape as web/handlers.go's
// streamPTYToWebSocket/handleWebSocketInput pair, swapped from a PTY
// byte stream to JSON-framed engine.Command/engine.WmEvent messages.
package ipc

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/corewm/corewm/internal/engine"
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ipc",
	})
}

// SetLogLevel sets the logging level for the ipc package.
func SetLogLevel(level log.Level) { logger.SetLevel(level) }

// subscriberBuffer is how many WmEvents a slow client can fall behind
// by before Broadcast starts dropping events for it (spec.md §5:
// "failed send to a dead subscriber drops the event for that
// subscriber without affecting others").
const subscriberBuffer = 64

// Hub fans out engine.WmEvent broadcasts to every subscribed client.
// It owns no transport; Server calls Subscribe/Unsubscribe, and Pump
// calls Broadcast for every engine event.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan engine.WmEvent
	next int
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan engine.WmEvent)}
}

// Subscribe registers a new client and returns its event channel and
// an id to later pass to Unsubscribe.
func (h *Hub) Subscribe() (int, <-chan engine.WmEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan engine.WmEvent, subscriberBuffer)
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a client's event channel.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

// Broadcast fans ev out to every subscriber without blocking; a
// subscriber whose channel is full drops the event rather than
// stalling every other subscriber or the engine's emit loop.
func (h *Hub) Broadcast(ev engine.WmEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			logger.Debug("dropped wm event for slow subscriber", "subscriber", id, "kind", ev.Kind)
		}
	}
}

// Pump reads from the engine's WmEvents channel until it closes,
// broadcasting each one. Run it in its own goroutine alongside
// engine.Run.
func (h *Hub) Pump(events <-chan engine.WmEvent) {
	for ev := range events {
		h.Broadcast(ev)
	}
}
