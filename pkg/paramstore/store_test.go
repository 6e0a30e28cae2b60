package paramstore

import (
	"reflect"
	"testing"

	"github.com/urlsync-dev/urlsync/pkg/codec"
	"github.com/urlsync-dev/urlsync/pkg/location"
)

func newStore(t *testing.T, url string, opts ...Option) (*Store, *location.Memory) {
	t.Helper()
	m := location.NewMemory(url)
	s, err := New(m, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s, m
}

func TestInitialStateFromURL(t *testing.T) {
	s, _ := newStore(t, "/items?page=3&q=shoes", WithDefaults(codec.Values{"page": 1, "pageSize": 10}))

	want := codec.Values{"page": 3, "pageSize": 10, "q": "shoes"}
	if got := s.Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}
}

func TestInitialStateMalformedQuery(t *testing.T) {
	m := location.NewMemory("/items?q=%zz")
	if _, err := New(m); err == nil {
		t.Fatal("expected parse error for malformed query")
	}
}

func TestSetReplacesState(t *testing.T) {
	s, m := newStore(t, "/items?page=3")

	s.Set(codec.Values{"q": "boots"})

	want := codec.Values{"q": "boots"}
	if got := s.Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}
	if got := m.Current().RawQuery; got != "q=boots" {
		t.Errorf("RawQuery = %q, want q=boots", got)
	}
	if m.HistoryLength() != 2 {
		t.Errorf("HistoryLength = %d, want 2 (push)", m.HistoryLength())
	}
}

func TestUpdateMerges(t *testing.T) {
	s, m := newStore(t, "/items?page=3&q=shoes")

	s.Update(codec.Values{"page": 4, "sort": "price"})

	want := codec.Values{"page": 4, "q": "shoes", "sort": "price"}
	if got := s.Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}
	if got := m.Current().RawQuery; got != "page=4&q=shoes&sort=price" {
		t.Errorf("RawQuery = %q", got)
	}
}

func TestUpdateNilRemovesKey(t *testing.T) {
	s, m := newStore(t, "/items?q=shoes")

	s.Update(codec.Values{"q": nil})

	if _, ok := s.Get()["q"]; ok {
		t.Error("nil update left q in state")
	}
	if got := m.Current().RawQuery; got != "" {
		t.Errorf("RawQuery = %q, want empty", got)
	}
}

func TestRemove(t *testing.T) {
	s, m := newStore(t, "/items?page=3&q=shoes")

	s.Remove("q", "never-there")

	want := codec.Values{"page": 3}
	if got := s.Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}
	if got := m.Current().RawQuery; got != "page=3" {
		t.Errorf("RawQuery = %q, want page=3", got)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s, m := newStore(t, "/items?page=9&q=x", WithDefaults(codec.Values{"page": 1, "pageSize": 10}))

	s.Reset()
	first := s.Get()
	s.Reset()
	second := s.Get()

	want := codec.Values{"page": 1, "pageSize": 10}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("after first Reset = %v, want %v", first, want)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Reset not idempotent: %v vs %v", first, second)
	}
	if got := m.Current().RawQuery; got != "page=1&pageSize=10" {
		t.Errorf("RawQuery = %q", got)
	}
}

func TestResetWithoutDefaultsYieldsEmpty(t *testing.T) {
	s, _ := newStore(t, "/items?page=9")

	s.Reset()
	if got := s.Get(); len(got) != 0 {
		t.Errorf("Get = %v, want empty", got)
	}
}

func TestPopStateRederivesWithoutPush(t *testing.T) {
	s, m := newStore(t, "/items", WithDefaults(codec.Values{"page": 1}))

	s.Update(codec.Values{"page": 2})
	s.Update(codec.Values{"page": 3})
	lengthBefore := m.HistoryLength()

	m.Back()

	if got := s.Get()["page"]; got != 2 {
		t.Errorf("page after Back = %v, want 2", got)
	}
	if m.HistoryLength() != lengthBefore {
		t.Errorf("Back changed history length: %d -> %d", lengthBefore, m.HistoryLength())
	}

	m.Forward()
	if got := s.Get()["page"]; got != 3 {
		t.Errorf("page after Forward = %v, want 3", got)
	}
	if m.HistoryLength() != lengthBefore {
		t.Errorf("Forward changed history length: %d -> %d", lengthBefore, m.HistoryLength())
	}
}

func TestSubscribeNotifiedOnMutationAndPopState(t *testing.T) {
	s, m := newStore(t, "/items")

	var seen []codec.Values
	unsub := s.Subscribe(func(v codec.Values) {
		seen = append(seen, v)
	})

	s.Set(codec.Values{"page": 2})
	m.Back()

	if len(seen) != 2 {
		t.Fatalf("subscriber fired %d times, want 2", len(seen))
	}
	if seen[0]["page"] != 2 {
		t.Errorf("first notification = %v", seen[0])
	}
	if _, ok := seen[1]["page"]; ok {
		t.Errorf("second notification should reflect the earlier URL, got %v", seen[1])
	}

	unsub()
	s.Set(codec.Values{"page": 5})
	if len(seen) != 2 {
		t.Errorf("unsubscribed callback still fired")
	}
}

func TestCloseDetachesPopState(t *testing.T) {
	m := location.NewMemory("/items")
	s, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if m.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want exactly 1", m.SubscriberCount())
	}

	s.Close()
	s.Close() // idempotent
	if m.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount after Close = %d, want 0", m.SubscriberCount())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := newStore(t, "/items?page=3")

	got := s.Get()
	got["page"] = 99

	if s.Get()["page"] != 3 {
		t.Error("Get exposed internal state")
	}
}

func TestPopStateMalformedQueryKeepsState(t *testing.T) {
	s, m := newStore(t, "/items?page=2")

	// Force a malformed entry into history directly on the port, then
	// navigate back onto it.
	m.Push("/items?q=%zz")
	m.Push("/items?page=4")
	m.Back()

	// The malformed entry can't be parsed; in-memory state stays.
	if got := s.Get()["page"]; got != 2 {
		t.Errorf("page = %v, want 2 (state kept on parse failure)", got)
	}
}
