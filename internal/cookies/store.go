package cookies

import (
	"context"
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound        = errors.New("cookie not found")
	ErrStoreClosed     = errors.New("cookie store is closed")
	ErrInvalidConfig   = errors.New("invalid cookie store configuration")
	ErrNothingToRemove = errors.New("no cookie file exists, nothing to remove")
)

// HandlingError is returned by every Store operation that fails. Op names the
// operation and Err carries the underlying cause.
type HandlingError struct {
	Op  string
	Err error
}

func (e *HandlingError) Error() string {
	return fmt.Sprintf("cookie %s failed: %v", e.Op, e.Err)
}

func (e *HandlingError) Unwrap() error {
	return e.Err
}

// Store defines the interface for cookie persistence.
type Store interface {
	// Set stores a cookie, replacing any cookie with the same key.
	Set(ctx context.Context, cookie *Cookie) error

	// Get retrieves a cookie by name, domain, and path.
	Get(ctx context.Context, name, domain, path string) (*Cookie, error)

	// List returns every stored cookie in no particular order.
	List(ctx context.Context) ([]*Cookie, error)

	// Delete removes a specific cookie. A missing key is not an error.
	Delete(ctx context.Context, name, domain, path string) error

	// Clear removes all cookies.
	Clear(ctx context.Context) error

	// Count returns total number of cookies.
	Count(ctx context.Context) (int64, error)

	// Close closes the store.
	Close() error
}
