// Package store implements the key-path document tree the diary is kept in.
//
// Values are JSON. Objects are split into one stored document per leaf so a
// path can be read, replaced or removed at any depth, the way hosted
// realtime databases behave. Two durable backends exist, diskv and sqlite,
// plus an in-memory one.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("store: closed")

// Adapter is the document tree contract consumed by the diary.
type Adapter interface {
	// Read returns the value at path with all descendants assembled, or nil
	// when nothing is stored there.
	Read(ctx context.Context, path string) (json.RawMessage, error)
	// Subscribe delivers the value at path once, then again after every
	// change touching path, an ancestor or a descendant. The returned
	// function unsubscribes; cancelling ctx does too.
	Subscribe(ctx context.Context, path string, onValue func(json.RawMessage), onError func(error)) (func(), error)
	// Write replaces the value at path. A nil value removes it.
	Write(ctx context.Context, path string, value any) error
	// Update writes each key of partial below path, leaving siblings alone.
	Update(ctx context.Context, path string, partial map[string]any) error
	// Remove deletes path and its descendants. Removing nothing is not an
	// error.
	Remove(ctx context.Context, path string) error
	// BatchUpdate writes every path in updates, or none of them.
	BatchUpdate(ctx context.Context, updates map[string]any) error
	Close() error
}

// ReadInto decodes the value at path into v. It returns ErrNotFound when
// nothing is stored there.
func ReadInto(ctx context.Context, a Adapter, path string, v any) error {
	raw, err := a.Read(ctx, path)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", path, err)
	}
	return nil
}

// encodeValue renders a caller value as JSON. nil means removal.
func encodeValue(v any) (json.RawMessage, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if val == nil {
			return nil, nil
		}
		if !json.Valid(val) {
			return nil, errors.New("value is not valid JSON")
		}
		return val, nil
	case []byte:
		if !json.Valid(val) {
			return nil, errors.New("value is not valid JSON")
		}
		return val, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
