package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flaky struct {
	Adapter
	failures int
	calls    int
	err      error
}

func (f *flaky) Write(ctx context.Context, path string, value any) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.Adapter.Write(ctx, path, value)
}

func (f *flaky) Read(ctx context.Context, path string) (json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.Adapter.Read(ctx, path)
}

func TestWithRetryRecoversTransientFailures(t *testing.T) {
	inner := &flaky{
		Adapter:  NewMemory(),
		failures: 2,
		err:      &AdapterError{Op: "write", Path: "a", Err: errors.New("database is locked")},
	}
	a := WithRetry(inner, RetryPolicy{Attempts: 3, Delay: time.Millisecond}, nil)

	require.NoError(t, a.Write(context.Background(), "a", 1))
	assert.Equal(t, 3, inner.calls)

	raw, err := a.Read(context.Background(), "a")
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(raw))
}

func TestWithRetryGivesUp(t *testing.T) {
	cause := &AdapterError{Op: "read", Path: "a", Err: errors.New("io error")}
	inner := &flaky{Adapter: NewMemory(), failures: 10, err: cause}
	a := WithRetry(inner, RetryPolicy{Attempts: 2, Delay: time.Millisecond}, nil)

	_, err := a.Read(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
	var ae *AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "read", ae.Op)
}

func TestWithRetrySkipsPermanentFailures(t *testing.T) {
	inner := &flaky{Adapter: NewMemory(), failures: 10, err: invalid("write", "a", errors.New("bad key"))}
	a := WithRetry(inner, RetryPolicy{Attempts: 5, Delay: time.Millisecond}, nil)

	err := a.Write(context.Background(), "a", 1)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 1, inner.calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(wrap("read", "a", context.Canceled)))
	assert.True(t, IsTransient(wrap("read", "a", errors.New("io"))))
}
