package bridge

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the base logger for accepted sessions.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithSessionConfig overrides the session timing configuration.
func WithSessionConfig(config SessionConfig) HandlerOption {
	return func(h *Handler) {
		h.sessionConfig = config
	}
}

// WithMetrics attaches Prometheus metrics to accepted sessions.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithCheckOrigin sets the websocket origin check. The default accepts
// same-origin requests only, per gorilla's upgrader.
func WithCheckOrigin(fn func(r *http.Request) bool) HandlerOption {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = fn
	}
}

// Handler upgrades HTTP requests to urlsync sessions. Mount it on any
// mux; it expects a websocket handshake.
//
// onSession runs on the session's loop after the client's hello event, so
// the session's location is already populated. This is where the
// application builds its param stores over the session.
type Handler struct {
	upgrader      websocket.Upgrader
	onSession     func(*Session)
	sessionConfig SessionConfig
	logger        *slog.Logger
	metrics       *Metrics

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHandler creates a Handler that invokes onSession for every connected
// browser.
func NewHandler(onSession func(*Session), opts ...HandlerOption) *Handler {
	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		onSession:     onSession,
		sessionConfig: DefaultSessionConfig(),
		logger:        slog.Default(),
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the connection and runs the session until it ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	s := newSession(conn, h.sessionConfig, h.logger, h.metrics)
	s.onReady = h.onSession

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.sessions[s.ID()] = s
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sessions, s.ID())
		h.mu.Unlock()
	}()

	if h.metrics != nil {
		h.metrics.activeSessions.Inc()
		defer h.metrics.activeSessions.Dec()
	}
	s.logger.Info("session started", "remote", r.RemoteAddr)

	go s.runLoop()
	s.readLoop() // blocks until the connection drops

	s.Close()
	s.logger.Info("session ended")
}

// Close terminates every active session and rejects new connections.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
