package tableparams

import (
	"reflect"
	"testing"

	"github.com/urlsync-dev/urlsync/pkg/codec"
	"github.com/urlsync-dev/urlsync/pkg/location"
)

func newTable(t *testing.T, url string, opts ...Option) (*Store, *location.Memory) {
	t.Helper()
	m := location.NewMemory(url)
	s, err := New(m, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s, m
}

func TestDefaults(t *testing.T) {
	s, _ := newTable(t, "/items")

	if got := s.Page(); got != 1 {
		t.Errorf("Page = %d, want 1", got)
	}
	if got := s.PageSize(); got != 10 {
		t.Errorf("PageSize = %d, want 10", got)
	}
	if got := s.Search(); got != "" {
		t.Errorf("Search = %q, want empty", got)
	}
}

func TestInitialStateFromURL(t *testing.T) {
	s, _ := newTable(t, "/items?page=4&pageSize=25&search=boots&sortField=price&sortOrder=desc")

	if s.Page() != 4 || s.PageSize() != 25 {
		t.Errorf("Page/PageSize = %d/%d, want 4/25", s.Page(), s.PageSize())
	}
	if s.Search() != "boots" {
		t.Errorf("Search = %q", s.Search())
	}
	field, order := s.Sort()
	if field != "price" || order != SortDesc {
		t.Errorf("Sort = %q/%q, want price/desc", field, order)
	}
}

func TestSetPage(t *testing.T) {
	s, m := newTable(t, "/items")

	s.SetPage(5)
	if s.Page() != 5 {
		t.Errorf("Page = %d, want 5", s.Page())
	}
	if got := m.Current().RawQuery; got != "page=5&pageSize=10" {
		t.Errorf("RawQuery = %q", got)
	}
}

func TestSearchResetsPage(t *testing.T) {
	s, _ := newTable(t, "/items")

	s.SetPage(5)
	s.SetSearch("x")

	if s.Page() != 1 {
		t.Errorf("Page = %d, want 1 after search", s.Page())
	}
	if s.Search() != "x" {
		t.Errorf("Search = %q, want x", s.Search())
	}
}

func TestPageSizeResetsPage(t *testing.T) {
	s, _ := newTable(t, "/items")

	s.SetPage(3)
	s.SetPageSize(20)

	if s.Page() != 1 {
		t.Errorf("Page = %d, want 1 after page size change", s.Page())
	}
	if s.PageSize() != 20 {
		t.Errorf("PageSize = %d, want 20", s.PageSize())
	}
}

func TestSortKeepsPage(t *testing.T) {
	s, _ := newTable(t, "/items")

	s.SetPage(3)
	s.SetSort("name", SortAsc)

	if s.Page() != 3 {
		t.Errorf("Page = %d, want 3 (sort keeps page)", s.Page())
	}
	field, order := s.Sort()
	if field != "name" || order != SortAsc {
		t.Errorf("Sort = %q/%q", field, order)
	}
}

func TestClearSort(t *testing.T) {
	s, m := newTable(t, "/items?sortField=name&sortOrder=asc")

	s.SetSort("", SortAsc)

	field, order := s.Sort()
	if field != "" || order != "" {
		t.Errorf("Sort = %q/%q, want cleared", field, order)
	}
	if got := m.Current().RawQuery; got != "page=1&pageSize=10" {
		t.Errorf("RawQuery = %q", got)
	}
}

func TestEmptySearchRemovesKey(t *testing.T) {
	s, m := newTable(t, "/items?search=boots")

	s.SetSearch("")

	if _, ok := s.Get()[KeySearch]; ok {
		t.Error("empty search left the key in state")
	}
	if got := m.Current().RawQuery; got != "page=1&pageSize=10" {
		t.Errorf("RawQuery = %q", got)
	}
}

func TestFilterResetsPage(t *testing.T) {
	s, _ := newTable(t, "/items")

	s.SetPage(7)
	s.SetFilter("category", "tools")

	if s.Page() != 1 {
		t.Errorf("Page = %d, want 1 after filter", s.Page())
	}
	if got := s.Filter("category"); got != "tools" {
		t.Errorf("Filter = %v", got)
	}

	s.SetFilter("category", "")
	if got := s.Filter("category"); got != nil {
		t.Errorf("Filter after empty = %v, want removed", got)
	}
}

func TestResetRestoresTableDefaults(t *testing.T) {
	s, _ := newTable(t, "/items?page=9&search=x", WithDefaults(codec.Values{"category": "all"}))

	s.Reset()
	first := s.Get()
	s.Reset()
	second := s.Get()

	want := codec.Values{KeyPage: 1, KeyPageSize: 10, "category": "all"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("after Reset = %v, want %v", first, want)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Reset not idempotent: %v vs %v", first, second)
	}
}

func TestBackRestoresPreviousTableState(t *testing.T) {
	s, m := newTable(t, "/items")

	s.SetPage(2)
	s.SetSearch("shoes")
	before := m.HistoryLength()

	m.Back()

	if s.Page() != 2 {
		t.Errorf("Page = %d, want 2 (state before the search)", s.Page())
	}
	if s.Search() != "" {
		t.Errorf("Search = %q, want empty", s.Search())
	}
	if m.HistoryLength() != before {
		t.Errorf("Back changed history length: %d -> %d", before, m.HistoryLength())
	}
}
