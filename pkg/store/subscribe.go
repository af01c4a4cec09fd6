package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

type subscription struct {
	path   string
	signal chan struct{}
}

// hub fans change notifications out to subscriptions whose path is related
// to a changed path.
type hub struct {
	mu        sync.Mutex
	subs      map[*subscription]struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newHub() *hub {
	return &hub{
		subs: make(map[*subscription]struct{}),
		done: make(chan struct{}),
	}
}

func (h *hub) add(path string) *subscription {
	sub := &subscription{path: path, signal: make(chan struct{}, 1)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub) remove(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

func (h *hub) notify(paths ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		for _, p := range paths {
			if Related(sub.path, p) {
				// A pending signal already covers this change.
				select {
				case sub.signal <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}

func (h *hub) close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (t *Tree) Subscribe(ctx context.Context, path string, onValue func(json.RawMessage), onError func(error)) (func(), error) {
	if _, err := Split(path); err != nil {
		return nil, invalid("subscribe", path, err)
	}
	if onValue == nil {
		return nil, invalid("subscribe", path, errors.New("onValue is required"))
	}
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return nil, wrap("subscribe", path, ErrClosed)
	}
	t.startWatch()

	ctx, cancel := context.WithCancel(ctx)
	sub := t.hub.add(path)
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			t.hub.remove(sub)
		})
	}

	deliver := func() bool {
		v, err := t.Read(ctx, path)
		if ctx.Err() != nil {
			return false
		}
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return false
			}
			if onError != nil {
				onError(err)
			} else {
				t.log.Warn("subscription read failed", "path", path, "error", err)
			}
			return true
		}
		onValue(v)
		return true
	}

	go func() {
		defer unsubscribe()
		if !deliver() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.hub.done:
				return
			case <-sub.signal:
				if !deliver() {
					return
				}
			}
		}
	}()
	return unsubscribe, nil
}

func (t *Tree) startWatch() {
	if t.watch == nil {
		return
	}
	t.watchOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			cancel()
			return
		}
		t.stopWatch = cancel
		t.mu.Unlock()
		if err := t.watch(ctx, t.log, t.hub.notify); err != nil {
			t.log.Warn("store watch unavailable", "error", err)
		}
	})
}
