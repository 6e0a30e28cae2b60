// Package tableparams is a typed convenience layer over the generic param
// store for list and grid UIs: pagination, sort, search, and arbitrary
// filter keys. Any operation that changes the shape of the result set
// (search, filter, page size) resets pagination to page 1, because the
// previous offset is meaningless against a different result set.
package tableparams

import (
	"github.com/urlsync-dev/urlsync/pkg/codec"
	"github.com/urlsync-dev/urlsync/pkg/location"
	"github.com/urlsync-dev/urlsync/pkg/paramstore"
)

// Recognized parameter keys.
const (
	KeyPage      = "page"
	KeyPageSize  = "pageSize"
	KeySearch    = "search"
	KeySortField = "sortField"
	KeySortOrder = "sortOrder"
)

// Pagination defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Option configures a table param store.
type Option func(*config)

type config struct {
	defaults codec.Values
}

// WithDefaults adds baseline values on top of the pagination defaults.
// Use it for filter keys a view should start with.
func WithDefaults(defaults codec.Values) Option {
	return func(c *config) {
		c.defaults = defaults
	}
}

// Store is a param store pre-populated with table fields.
// The embedded generic store remains available for ad-hoc keys.
type Store struct {
	*paramstore.Store
}

// New creates a table param store over port. Defaults are
// {page: 1, pageSize: 10} merged with any WithDefaults values.
func New(port location.Port, opts ...Option) (*Store, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	defaults := codec.Values{
		KeyPage:     DefaultPage,
		KeyPageSize: DefaultPageSize,
	}
	for k, v := range c.defaults {
		defaults[k] = v
	}

	inner, err := paramstore.New(port, paramstore.WithDefaults(defaults))
	if err != nil {
		return nil, err
	}
	return &Store{Store: inner}, nil
}

// SetPage navigates to page n.
func (s *Store) SetPage(n int) {
	s.Update(codec.Values{KeyPage: n})
}

// SetPageSize changes the page size and resets to page 1: the old page
// offset is invalid against the new page boundaries.
func (s *Store) SetPageSize(n int) {
	s.Update(codec.Values{KeyPageSize: n, KeyPage: DefaultPage})
}

// SetSearch sets the search term and resets to page 1.
// An empty term removes the key entirely.
func (s *Store) SetSearch(term string) {
	s.Update(codec.Values{KeySearch: emptyToNil(term), KeyPage: DefaultPage})
}

// SetSort sets the sort field and order without resetting the page:
// reordering does not change which rows exist, only their positions.
// An empty field clears the sort.
func (s *Store) SetSort(field string, order SortOrder) {
	if field == "" {
		s.Update(codec.Values{KeySortField: nil, KeySortOrder: nil})
		return
	}
	s.Update(codec.Values{KeySortField: field, KeySortOrder: string(order)})
}

// SetFilter sets an arbitrary filter key and resets to page 1.
// An empty string removes the key.
func (s *Store) SetFilter(key string, value any) {
	if str, ok := value.(string); ok && str == "" {
		value = nil
	}
	s.Update(codec.Values{key: value, KeyPage: DefaultPage})
}

// Page returns the current page, falling back to 1.
func (s *Store) Page() int {
	return s.Get().Int(KeyPage, DefaultPage)
}

// PageSize returns the current page size, falling back to 10.
func (s *Store) PageSize() int {
	return s.Get().Int(KeyPageSize, DefaultPageSize)
}

// Search returns the current search term, or "" if none.
func (s *Store) Search() string {
	return s.Get().String(KeySearch)
}

// Sort returns the current sort field and order.
// The field is "" when no sort is active.
func (s *Store) Sort() (string, SortOrder) {
	v := s.Get()
	return v.String(KeySortField), SortOrder(v.String(KeySortOrder))
}

// Filter returns the current value of an arbitrary filter key.
func (s *Store) Filter(key string) any {
	return s.Peek(key)
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
