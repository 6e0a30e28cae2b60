package location

// Memory is an in-memory Port with a real back-stack. It is the test double
// for the browser location and is also usable by embedded hosts that have
// no browser at all.
//
// Memory mimics the browser's default scroll behavior: every navigation
// (push, replace, back, forward) resets the scroll offset to zero, so the
// history writer's deferred restoration is observable in tests.
//
// Memory is not safe for concurrent use; like the real location object it
// assumes a single scheduling thread.
type Memory struct {
	stack    []Location
	index    int
	scroll   int
	deferred []func()

	nextSubID int
	popSubs   map[int]func(Location)
}

// NewMemory creates a Memory port positioned at the given initial URL.
func NewMemory(initialURL string) *Memory {
	return &Memory{
		stack:   []Location{ParseURL(initialURL)},
		popSubs: make(map[int]func(Location)),
	}
}

// Current returns the location at the current history position.
func (m *Memory) Current() Location {
	return m.stack[m.index]
}

// Push adds a new history entry, discarding any forward entries.
func (m *Memory) Push(url string) {
	m.stack = append(m.stack[:m.index+1], ParseURL(url))
	m.index = len(m.stack) - 1
	m.scroll = 0
}

// Replace overwrites the current history entry in place.
func (m *Memory) Replace(url string) {
	m.stack[m.index] = ParseURL(url)
	m.scroll = 0
}

// Back moves one entry backward and fires popstate subscribers.
// At the start of the stack it is a no-op, matching browser behavior.
func (m *Memory) Back() {
	if m.index == 0 {
		return
	}
	m.index--
	m.scroll = 0
	m.firePopState()
}

// Forward moves one entry forward and fires popstate subscribers.
func (m *Memory) Forward() {
	if m.index >= len(m.stack)-1 {
		return
	}
	m.index++
	m.scroll = 0
	m.firePopState()
}

// OnPopState subscribes fn to Back/Forward navigation.
func (m *Memory) OnPopState(fn func(Location)) func() {
	id := m.nextSubID
	m.nextSubID++
	m.popSubs[id] = fn
	return func() {
		delete(m.popSubs, id)
	}
}

// SubscriberCount returns the number of live popstate subscriptions.
func (m *Memory) SubscriberCount() int {
	return len(m.popSubs)
}

// ScrollOffset returns the current vertical scroll offset.
func (m *Memory) ScrollOffset() int {
	return m.scroll
}

// SetScrollOffset sets the vertical scroll offset.
func (m *Memory) SetScrollOffset(offset int) {
	m.scroll = offset
}

// Defer queues fn for the next Flush.
func (m *Memory) Defer(fn func()) {
	m.deferred = append(m.deferred, fn)
}

// Flush runs all deferred tasks in FIFO order. Tasks queued while flushing
// run in the same drain.
func (m *Memory) Flush() {
	for len(m.deferred) > 0 {
		fn := m.deferred[0]
		m.deferred = m.deferred[1:]
		fn()
	}
}

// HistoryLength returns the number of entries in the back-stack.
func (m *Memory) HistoryLength() int {
	return len(m.stack)
}

func (m *Memory) firePopState() {
	loc := m.Current()
	// Copy before notify so a callback may unsubscribe itself.
	subs := make([]func(Location), 0, len(m.popSubs))
	for _, fn := range m.popSubs {
		subs = append(subs, fn)
	}
	for _, fn := range subs {
		fn(loc)
	}
}

var _ Port = (*Memory)(nil)
