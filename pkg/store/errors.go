package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by ReadInto when nothing is stored at a path.
var ErrNotFound = errors.New("store: not found")

// ErrInvalid marks requests the backend refuses regardless of retries.
var ErrInvalid = errors.New("store: invalid request")

// AdapterError wraps every failure reported by a backend.
type AdapterError struct {
	Op   string
	Path string
	Err  error
}

func (e *AdapterError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AdapterError
	if errors.As(err, &ae) {
		return err
	}
	return &AdapterError{Op: op, Path: path, Err: err}
}

func invalid(op, path string, err error) error {
	return &AdapterError{Op: op, Path: path, Err: fmt.Errorf("%w: %v", ErrInvalid, err)}
}

// IsTransient reports whether retrying the call that returned err may
// succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrClosed) {
		return false
	}
	var ae *AdapterError
	return errors.As(err, &ae)
}
