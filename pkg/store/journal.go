package store

import (
	"context"
	"errors"
)

type prior struct {
	value  []byte
	exists bool
}

// journal records the prior state of every key a batch touches so a failed
// batch can be rolled back on backends without transactions.
type journal struct {
	backend
	saved map[string]prior
}

func withJournal(ctx context.Context, b backend, fn func(backend) error) error {
	j := &journal{backend: b, saved: map[string]prior{}}
	if err := fn(j); err != nil {
		if rerr := j.rollback(context.WithoutCancel(ctx)); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}

func (j *journal) remember(ctx context.Context, key string) error {
	if _, ok := j.saved[key]; ok {
		return nil
	}
	v, ok, err := j.backend.get(ctx, key)
	if err != nil {
		return err
	}
	j.saved[key] = prior{value: v, exists: ok}
	return nil
}

func (j *journal) put(ctx context.Context, key string, value []byte) error {
	if err := j.remember(ctx, key); err != nil {
		return err
	}
	return j.backend.put(ctx, key, value)
}

func (j *journal) del(ctx context.Context, key string) error {
	if err := j.remember(ctx, key); err != nil {
		return err
	}
	return j.backend.del(ctx, key)
}

func (j *journal) atomic(_ context.Context, fn func(backend) error) error {
	return fn(j)
}

func (j *journal) rollback(ctx context.Context) error {
	var errs []error
	for key, p := range j.saved {
		var err error
		if p.exists {
			err = j.backend.put(ctx, key, p.value)
		} else {
			err = j.backend.del(ctx, key)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
