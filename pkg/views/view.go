// Package views persists named snapshots of URL parameter state, the
// backing for "save this filtered view" and short shareable links in list
// UIs. A view stores the canonical serialized query string, so loading one
// goes through the same parse path as a pasted URL.
package views

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/urlsync-dev/urlsync/pkg/codec"
)

// ErrNotFound is returned when a view does not exist in the store.
var ErrNotFound = errors.New("views: view not found")

// View is a named snapshot of a parameter object.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a view snapshotting values under the given name.
// The parameter object is stored in its canonical serialized form.
func New(name string, values codec.Values) View {
	return View{
		ID:        newViewID(),
		Name:      name,
		Query:     codec.Serialize(values),
		CreatedAt: time.Now().UTC(),
	}
}

// NewFromQuery creates a view from a raw query string. The query is
// parsed and re-serialized so the stored snapshot is canonical.
func NewFromQuery(name, rawQuery string) (View, error) {
	values, err := codec.Parse(rawQuery, nil)
	if err != nil {
		return View{}, err
	}
	return New(name, values), nil
}

// Values parses the snapshot back into a parameter object.
func (v View) Values() (codec.Values, error) {
	return codec.Parse(v.Query, nil)
}

// newViewID returns a random 8-byte hex identifier, short enough for a
// share link.
func newViewID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("views: rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
