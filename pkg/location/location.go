// Package location abstracts the browser's addressable-state channel.
//
// The single global location/history object is modeled as an injected Port
// capability so that everything above it (the param store, the history
// writer) can run against an in-memory fake in tests and against a live
// browser through the bridge package in production.
package location

import "strings"

// Location is a decomposed URL: path, raw query string, and fragment.
// RawQuery and Fragment carry no leading "?" or "#".
type Location struct {
	Path     string
	RawQuery string
	Fragment string
}

// URL renders the location as a relative URL string.
func (l Location) URL() string {
	var b strings.Builder
	b.WriteString(l.Path)
	if l.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(l.RawQuery)
	}
	if l.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(l.Fragment)
	}
	return b.String()
}

// ParseURL splits a relative URL string into a Location.
// The fragment is cut before the query, matching browser address parsing.
func ParseURL(s string) Location {
	var l Location
	s, l.Fragment, _ = strings.Cut(s, "#")
	l.Path, l.RawQuery, _ = strings.Cut(s, "?")
	if l.Path == "" {
		l.Path = "/"
	}
	return l
}

// Port is the host-environment contract required by the history writer and
// the param store: synchronous access to the current location, history
// push/replace primitives, a popstate-equivalent subscription, scroll
// offset access, and a deferred-task scheduler.
//
// Implementations serialize all calls on a single logical thread; see the
// bridge package's session loop and the Memory port's Flush.
type Port interface {
	// Current returns the location as of the most recent update.
	Current() Location

	// Push navigates to url, adding a new history entry.
	Push(url string)

	// Replace navigates to url, overwriting the current history entry.
	Replace(url string)

	// OnPopState subscribes fn to external navigation (back/forward).
	// The returned func removes the subscription; calling it more than
	// once is harmless.
	OnPopState(fn func(Location)) (unsubscribe func())

	// ScrollOffset returns the current vertical scroll offset.
	ScrollOffset() int

	// SetScrollOffset sets the vertical scroll offset.
	SetScrollOffset(offset int)

	// Defer schedules fn as a single zero-delay follow-up task on the
	// port's scheduling thread.
	Defer(fn func())
}
