package location

import (
	"sync"

	"github.com/urlsync-dev/urlsync/pkg/codec"
)

// ApplyOptions controls how a Writer applies a parameter object.
type ApplyOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Scroll lets the host's default scroll-to-top stand. When false the
	// writer captures the scroll offset before the update and restores it
	// in a deferred task.
	Scroll bool
}

// Writer applies parameter objects to a location Port. It builds the target
// URL from the port's current path and fragment plus the serialized query,
// chooses push vs replace, and compensates for the host's scroll reset.
//
// Each Apply call cancels any previously scheduled scroll restoration, so
// "last call wins" holds even when two applies land in the same turn.
type Writer struct {
	port Port

	mu  sync.Mutex
	gen uint64
}

// NewWriter creates a Writer over the given port.
func NewWriter(port Port) *Writer {
	return &Writer{port: port}
}

// Apply serializes values and updates the port's location.
// The path and fragment of the current location are preserved; only the
// query string changes. No I/O is performed beyond the port calls.
func (w *Writer) Apply(values codec.Values, opts ApplyOptions) {
	cur := w.port.Current()
	target := Location{
		Path:     cur.Path,
		RawQuery: codec.Serialize(values),
		Fragment: cur.Fragment,
	}

	var restore func()
	if !opts.Scroll {
		saved := w.port.ScrollOffset()
		gen := w.nextGen()
		restore = func() {
			// A later Apply invalidates this restoration.
			if w.currentGen() != gen {
				return
			}
			w.port.SetScrollOffset(saved)
		}
	}

	if opts.Replace {
		w.port.Replace(target.URL())
	} else {
		w.port.Push(target.URL())
	}

	if restore != nil {
		w.port.Defer(restore)
	}
}

func (w *Writer) nextGen() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	return w.gen
}

func (w *Writer) currentGen() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen
}
