package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/corewm/corewm/internal/engine"
)

// Config holds the IPC WebSocket server configuration. Only plaintext
// localhost listening is supported (spec.md Non-goals: "a
// production-grade multi-writer TLS WebSocket listener" is out of
// scope).
type Config struct {
	Addr         string   // host:port to listen on
	AllowOrigins []string // empty means allow any origin
}

// DefaultConfig returns the IPC server's default bind address.
func DefaultConfig() Config {
	return Config{Addr: "127.0.0.1:7790"}
}

// Server accepts WebSocket connections from wmctl (or any client
// speaking the Command/WmEvent JSON protocol), forwarding parsed
// Commands onto a shared channel the engine's Run loop consumes, and
// streaming every broadcast WmEvent back to each connected client.
type Server struct {
	cfg      Config
	hub      *Hub
	commands chan<- engine.Command
	http     *http.Server
}

// NewServer constructs a Server. commands is the channel engine.Run
// was started with; the server is the only writer into it.
func NewServer(cfg Config, hub *Hub, commands chan<- engine.Command) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	return &Server{cfg: cfg, hub: hub, commands: commands}
}

// Handler returns the server's http.Handler, exposed separately from
// Start so tests can drive it with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Start listens until ctx is cancelled, mirroring the teacher's
// web.Server.Start context-driven shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("ipc server starting", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("ipc: listen %s: %w", s.cfg.Addr, err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down ipc server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: s.cfg.AllowOrigins}
	if len(s.cfg.AllowOrigins) == 0 {
		opts.OriginPatterns = []string{"*"}
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		logger.Error("websocket accept failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id, events := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	logger.Info("client connected", "subscriber", id, "remote", r.RemoteAddr)

	go s.writePump(ctx, cancel, conn, events)
	s.readPump(ctx, cancel, conn)

	logger.Info("client disconnected", "subscriber", id, "remote", r.RemoteAddr)
}

// writePump relays every WmEvent the hub fans to this client out over
// the WebSocket as a JSON text message.
func (s *Server) writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events <-chan engine.WmEvent) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("failed to marshal wm event", "err", err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

// readPump parses each incoming text message as a Command and forwards
// it onto the engine's command channel; a parse failure is logged and
// the connection kept open rather than dropped, since one bad command
// shouldn't cost the client its subscription.
func (s *Server) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var cmd engine.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warn("invalid command json", "err", err)
			continue
		}
		select {
		case s.commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
}
