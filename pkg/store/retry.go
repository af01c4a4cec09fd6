package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
)

// RetryPolicy bounds how often a failing call is repeated.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
}

// WithRetry repeats transient failures of a with exponential backoff.
// Subscriptions and Close pass through.
func WithRetry(a Adapter, policy RetryPolicy, log *slog.Logger) Adapter {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &retrying{Adapter: a, policy: policy, log: log}
}

type retrying struct {
	Adapter
	policy RetryPolicy
	log    *slog.Logger
}

func (r *retrying) do(ctx context.Context, op, path string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(r.policy.Attempts),
		retry.Delay(r.policy.Delay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.RetryIf(IsTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.log.Warn("retrying store call", "op", op, "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func (r *retrying) Read(ctx context.Context, path string) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.do(ctx, "read", path, func() error {
		v, err := r.Adapter.Read(ctx, path)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (r *retrying) Write(ctx context.Context, path string, value any) error {
	return r.do(ctx, "write", path, func() error {
		return r.Adapter.Write(ctx, path, value)
	})
}

func (r *retrying) Update(ctx context.Context, path string, partial map[string]any) error {
	return r.do(ctx, "update", path, func() error {
		return r.Adapter.Update(ctx, path, partial)
	})
}

func (r *retrying) Remove(ctx context.Context, path string) error {
	return r.do(ctx, "remove", path, func() error {
		return r.Adapter.Remove(ctx, path)
	})
}

func (r *retrying) BatchUpdate(ctx context.Context, updates map[string]any) error {
	return r.do(ctx, "batch", "", func() error {
		return r.Adapter.BatchUpdate(ctx, updates)
	})
}
