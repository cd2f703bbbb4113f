// Package photos stores member photos in an object store keyed by member identifier.
package photos

import "context"

// Store is the object-store surface the kiosk uses.
type Store interface {
	// URL returns a browser-usable reference to the object, or an error wrapping
	// apperr.ErrNotFound when no object exists under key.
	URL(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Reader is implemented by stores that can serve object bytes themselves.
type Reader interface {
	Get(ctx context.Context, key string) (data []byte, contentType string, err error)
}
