package csvstore

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is returned when a record lacks the domain or path half of
// its composite key.
var ErrInvalidKey = errors.New("cookie domain and path are required")

// DecodeError reports a row of the backing file that could not be decoded.
// Line is 1-based and zero when the row did not come from a file.
type DecodeError struct {
	Line   int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: column %q: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StorageReadError wraps any failure while loading the backing file.
type StorageReadError struct {
	Path string
	Err  error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("failed to read cookie file %s: %v", e.Path, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError wraps any failure while writing the backing file.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write cookie file %s: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
