package bridge

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/urlsync-dev/urlsync/pkg/location"
	"github.com/urlsync-dev/urlsync/pkg/protocol"
)

// Session errors.
var (
	ErrSessionClosed = errors.New("bridge: session closed")
	ErrQueueFull     = errors.New("bridge: session task queue full")
)

// SessionConfig holds timing and queue settings for a session.
type SessionConfig struct {
	// ReadTimeout is the deadline for a single websocket read.
	ReadTimeout time.Duration

	// WriteTimeout is the deadline for a single websocket write.
	WriteTimeout time.Duration

	// TaskQueueSize is the capacity of the run loop's task queue.
	TaskQueueSize int
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ReadTimeout:   60 * time.Second,
		WriteTimeout:  10 * time.Second,
		TaskQueueSize: 256,
	}
}

// Session is one connected browser. It implements location.Port: writes
// become patches on the wire, reads return the last state the client
// reported, and popstate subscriptions fire when the client navigates with
// back/forward.
type Session struct {
	id     string
	conn   *websocket.Conn
	config SessionConfig
	logger *slog.Logger

	tasks chan func()
	done  chan struct{}
	once  sync.Once

	// Loop-confined state. Touched only by the run loop goroutine.
	loc     location.Location
	scroll  int
	popSubs map[int]func(location.Location)
	nextSub int
	pending []protocol.Patch
	seq     uint64

	metrics *Metrics
	ready   bool
	onReady func(*Session)
}

// newSession creates a session over an established websocket connection.
func newSession(conn *websocket.Conn, config SessionConfig, logger *slog.Logger, metrics *Metrics) *Session {
	id := newSessionID()
	return &Session{
		id:      id,
		conn:    conn,
		config:  config,
		logger:  logger.With("session_id", id),
		tasks:   make(chan func(), config.TaskQueueSize),
		done:    make(chan struct{}),
		popSubs: make(map[int]func(location.Location)),
		metrics: metrics,
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Do posts fn to the session's run loop. It is the only safe way to touch
// session state from outside the loop. Returns ErrSessionClosed after Close
// and ErrQueueFull when the loop is saturated.
func (s *Session) Do(fn func()) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.tasks <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrQueueFull
	}
}

// Close tears the session down: the run loop stops, the connection closes,
// and pending tasks are discarded. Close is idempotent.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Done returns a channel closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ---------------------------------------------------------------------------
// location.Port implementation. Loop-confined; call only from the run loop.
// ---------------------------------------------------------------------------

// Current returns the location as last reported by or pushed to the client.
func (s *Session) Current() location.Location {
	return s.loc
}

// Push queues a URL push patch and updates the tracked location.
// The tracked scroll resets, mirroring the client's scroll-to-top.
func (s *Session) Push(url string) {
	s.loc = location.ParseURL(url)
	s.scroll = 0
	s.queuePatch(protocol.NewURLPushPatch(url))
}

// Replace queues a URL replace patch and updates the tracked location.
func (s *Session) Replace(url string) {
	s.loc = location.ParseURL(url)
	s.scroll = 0
	s.queuePatch(protocol.NewURLReplacePatch(url))
}

// OnPopState subscribes fn to the client's back/forward navigation.
func (s *Session) OnPopState(fn func(location.Location)) func() {
	id := s.nextSub
	s.nextSub++
	s.popSubs[id] = fn
	return func() {
		delete(s.popSubs, id)
	}
}

// ScrollOffset returns the scroll offset as last reported by the client.
func (s *Session) ScrollOffset() int {
	return s.scroll
}

// SetScrollOffset queues a ScrollTo patch.
func (s *Session) SetScrollOffset(offset int) {
	s.scroll = offset
	s.queuePatch(protocol.NewScrollToPatch(offset))
}

// Defer schedules fn on the run loop as a zero-delay follow-up task.
func (s *Session) Defer(fn func()) {
	if err := s.Do(fn); err != nil {
		s.logger.Warn("deferred task dropped", "error", err)
	}
}

var _ location.Port = (*Session)(nil)

// ---------------------------------------------------------------------------
// Run loop
// ---------------------------------------------------------------------------

// runLoop executes tasks one at a time and flushes queued patches after
// each turn. All loop-confined state is touched only here.
func (s *Session) runLoop() {
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.tasks:
			s.runTask(fn)
			s.flush()
		}
	}
}

func (s *Session) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic", "panic", r)
		}
	}()
	fn()
}

// queuePatch appends a patch to the pending batch. The batch goes out in a
// single frame when the current loop turn ends.
func (s *Session) queuePatch(p protocol.Patch) {
	s.pending = append(s.pending, p)
}

// flush writes pending patches as one patches frame.
func (s *Session) flush() {
	if len(s.pending) == 0 {
		return
	}

	s.seq++
	pf := &protocol.PatchesFrame{Seq: s.seq, Patches: s.pending}
	s.pending = nil

	frame := protocol.NewFrame(protocol.FramePatches, protocol.EncodePatches(pf))
	data, err := frame.Encode()
	if err != nil {
		// The batch exceeded the frame budget; the client would see a
		// corrupt stream, so drop the connection.
		s.logger.Error("patch frame encode error", "patches", len(pf.Patches), "error", err)
		s.Close()
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Error("patch write error", "error", err)
		s.Close()
		return
	}

	if s.metrics != nil {
		s.metrics.patchesSent.Add(float64(len(pf.Patches)))
	}
}

// readLoop reads frames from the websocket until the connection drops.
// Decoded events are posted to the run loop.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				s.logger.Error("event decode error", "error", err)
				continue
			}
			if err := s.Do(func() { s.handleEvent(ev) }); err != nil {
				s.logger.Warn("event dropped", "type", ev.Type.String(), "error", err)
			}

		case protocol.FrameControl:
			s.handleControl(frame.Payload)

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type.String())
		}
	}
}

// handleEvent applies a client event to the session state. Runs on the loop.
func (s *Session) handleEvent(ev *protocol.Event) {
	start := time.Now()
	span := startEventSpan(ev)
	defer span.End()

	switch ev.Type {
	case protocol.EventHello:
		s.loc = location.Location{Path: ev.Path, RawQuery: ev.RawQuery, Fragment: ev.Fragment}
		s.scroll = ev.Scroll
		if !s.ready {
			s.ready = true
			if s.onReady != nil {
				s.onReady(s)
			}
		}
	case protocol.EventPopState:
		s.loc = location.Location{Path: ev.Path, RawQuery: ev.RawQuery, Fragment: ev.Fragment}
		s.scroll = ev.Scroll
		s.firePopState()
	case protocol.EventScroll:
		s.scroll = ev.Scroll
	}
	if s.metrics != nil {
		s.metrics.eventsTotal.WithLabelValues(ev.Type.String()).Inc()
		s.metrics.eventDuration.Observe(time.Since(start).Seconds())
	}
}

// firePopState notifies popstate subscribers, copy-before-notify so a
// callback may unsubscribe itself.
func (s *Session) firePopState() {
	loc := s.loc
	subs := make([]func(location.Location), 0, len(s.popSubs))
	for _, fn := range s.popSubs {
		subs = append(subs, fn)
	}
	for _, fn := range subs {
		fn(loc)
	}
}

// handleControl answers pings. The pong write is posted to the run loop so
// that all connection writes happen on one goroutine.
func (s *Session) handleControl(payload []byte) {
	ct, ts, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Error("control decode error", "error", err)
		return
	}
	if ct != protocol.ControlPing {
		return
	}

	err = s.Do(func() {
		frame := protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(protocol.ControlPong, ts))
		data, err := frame.Encode()
		if err != nil {
			s.logger.Error("pong encode error", "error", err)
			return
		}
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			s.logger.Error("pong write error", "error", err)
			s.Close()
		}
	})
	if err != nil {
		s.logger.Warn("pong dropped", "error", err)
	}
}

// newSessionID returns a random 16-byte hex identifier.
func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("bridge: rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
