package views

import "context"

// Store is a persistence backend for views.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a view. An existing view with the same ID is
	// overwritten.
	Save(ctx context.Context, v View) error

	// Load retrieves a view by ID. Returns ErrNotFound if it does not
	// exist or has expired.
	Load(ctx context.Context, id string) (View, error)

	// Delete removes a view. Deleting an absent view is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all live views.
	List(ctx context.Context) ([]View, error)

	// Close releases any resources held by the store.
	Close() error
}
