// Package paramstore binds a parameter object to the browser address bar.
//
// A Store holds the last-parsed codec.Values in memory, mirrors every
// mutation to the location through a history writer, and re-derives its
// state from the URL when the user navigates with back/forward. UI code
// subscribes to the store and re-renders on every state replacement.
package paramstore

import (
	"sync"

	"github.com/urlsync-dev/urlsync/pkg/codec"
	"github.com/urlsync-dev/urlsync/pkg/location"
)

// Option configures a Store.
type Option func(*Store)

// WithDefaults sets baseline values for keys absent from the URL.
// Reset restores exactly these values.
func WithDefaults(defaults codec.Values) Option {
	return func(s *Store) {
		s.defaults = defaults.Clone()
	}
}

// Store synchronizes a parameter object with a location Port.
//
// State is replaced, never mutated in place: Get returns a copy and every
// operation installs a fresh Values. All writes go through the history
// writer as pushes; the popstate path replaces state without writing, since
// the URL already reflects the target state and a write would corrupt the
// back-stack.
type Store struct {
	writer   *location.Writer
	defaults codec.Values

	mu     sync.RWMutex
	values codec.Values

	subMu    sync.Mutex
	subs     map[int]func(codec.Values)
	nextSub  int
	unsubPop func()
}

// New creates a Store bound to port. The initial state is the current query
// string parsed over the defaults. The store holds exactly one popstate
// subscription until Close is called.
//
// A malformed query string in the current location surfaces here as the
// codec's parse error.
func New(port location.Port, opts ...Option) (*Store, error) {
	s := &Store{
		writer: location.NewWriter(port),
		subs:   make(map[int]func(codec.Values)),
	}
	for _, opt := range opts {
		opt(s)
	}

	initial, err := codec.Parse(port.Current().RawQuery, s.defaults)
	if err != nil {
		return nil, err
	}
	s.values = initial

	s.unsubPop = port.OnPopState(s.handlePopState)
	return s, nil
}

// Get returns a copy of the current parameter object.
func (s *Store) Get() codec.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Peek returns the current value for a single key (nil if absent).
func (s *Store) Peek(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set replaces the entire state with values and pushes the result.
func (s *Store) Set(values codec.Values) {
	s.install(values.Clone())
}

// Update merges partial over the current state, key by key, and pushes the
// merged result. A nil value in partial removes the key outright rather
// than serializing a null token; omission is the canonical "no value".
func (s *Store) Update(partial codec.Values) {
	s.mu.Lock()
	next := s.values.Clone()
	for k, v := range partial {
		if v == nil {
			delete(next, k)
			continue
		}
		next[k] = v
	}
	s.mu.Unlock()

	s.install(next)
}

// Remove deletes the listed keys and pushes the result.
// Removing an absent key is a no-op, not an error.
func (s *Store) Remove(keys ...string) {
	s.mu.Lock()
	next := s.values.Clone()
	for _, k := range keys {
		delete(next, k)
	}
	s.mu.Unlock()

	s.install(next)
}

// Reset replaces the state with the defaults (empty if none) and pushes it.
// Reset is idempotent: calling it twice yields identical state.
func (s *Store) Reset() {
	if s.defaults == nil {
		s.install(codec.Values{})
		return
	}
	s.install(s.defaults.Clone())
}

// Subscribe registers fn to run after every state replacement, including
// popstate-driven ones. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(codec.Values)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Close detaches the popstate subscription. The store remains readable but
// no longer tracks external navigation. Close is idempotent.
func (s *Store) Close() {
	if s.unsubPop != nil {
		s.unsubPop()
		s.unsubPop = nil
	}
}

// install replaces the state, writes it to the location, and notifies.
func (s *Store) install(next codec.Values) {
	s.mu.Lock()
	s.values = next
	s.mu.Unlock()

	s.writer.Apply(next, location.ApplyOptions{})
	s.notify()
}

// handlePopState re-derives state from the URL after back/forward.
// No write happens here: the URL already reflects the target state.
func (s *Store) handlePopState(loc location.Location) {
	parsed, err := codec.Parse(loc.RawQuery, s.defaults)
	if err != nil {
		// Malformed query on an externally navigated entry; keep the
		// in-memory state rather than guessing.
		return
	}

	s.mu.Lock()
	s.values = parsed
	s.mu.Unlock()

	s.notify()
}

// notify runs subscribers against a fresh copy, copy-before-notify so a
// callback may unsubscribe itself.
func (s *Store) notify() {
	state := s.Get()

	s.subMu.Lock()
	subs := make([]func(codec.Values), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
