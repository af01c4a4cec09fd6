package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// backend stores leaf documents keyed by their full path.
type backend interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, value []byte) error
	del(ctx context.Context, key string) error
	// scan returns every leaf at or below prefix.
	scan(ctx context.Context, prefix string) (map[string][]byte, error)
	// atomic runs fn so that either all of its changes land or none do.
	atomic(ctx context.Context, fn func(backend) error) error
	close() error
}

// watchFunc reports changes made outside this process until ctx is done.
type watchFunc func(ctx context.Context, log *slog.Logger, notify func(paths ...string)) error

// Tree implements Adapter over a backend.
type Tree struct {
	mu     sync.RWMutex
	b      backend
	hub    *hub
	log    *slog.Logger
	closed bool

	watch     watchFunc
	watchOnce sync.Once
	stopWatch context.CancelFunc
}

var _ Adapter = (*Tree)(nil)

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used for failures that cannot be returned.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tree) {
		if log != nil {
			t.log = log
		}
	}
}

func newTree(b backend, opts ...Option) *Tree {
	t := &Tree{
		b:   b,
		hub: newHub(),
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tree) Read(ctx context.Context, path string) (json.RawMessage, error) {
	if _, err := Split(path); err != nil {
		return nil, invalid("read", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, wrap("read", path, err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return nil, wrap("read", path, ErrClosed)
	}
	docs, err := t.b.scan(ctx, path)
	if err != nil {
		return nil, wrap("read", path, err)
	}
	raw, err := assemble(path, docs)
	if err != nil {
		return nil, wrap("read", path, err)
	}
	return raw, nil
}

func (t *Tree) Write(ctx context.Context, path string, value any) error {
	if _, err := Split(path); err != nil {
		return invalid("write", path, err)
	}
	raw, err := encodeValue(value)
	if err != nil {
		return invalid("write", path, err)
	}
	leaves, err := flatten(path, raw)
	if err != nil {
		return invalid("write", path, err)
	}
	return t.mutate(ctx, "write", path, []string{path}, func(b backend) error {
		return replace(ctx, b, path, leaves)
	})
}

func (t *Tree) Update(ctx context.Context, path string, partial map[string]any) error {
	if _, err := Split(path); err != nil {
		return invalid("update", path, err)
	}
	children := make(map[string]map[string][]byte, len(partial))
	for key, value := range partial {
		if err := checkKey(key); err != nil {
			return invalid("update", path, err)
		}
		raw, err := encodeValue(value)
		if err != nil {
			return invalid("update", path, err)
		}
		child := Child(path, key)
		leaves, err := flatten(child, raw)
		if err != nil {
			return invalid("update", path, err)
		}
		children[child] = leaves
	}
	if len(children) == 0 {
		return nil
	}
	return t.applyAll(ctx, "update", path, children)
}

func (t *Tree) Remove(ctx context.Context, path string) error {
	if _, err := Split(path); err != nil {
		return invalid("remove", path, err)
	}
	return t.mutate(ctx, "remove", path, []string{path}, func(b backend) error {
		return prune(ctx, b, path)
	})
}

func (t *Tree) BatchUpdate(ctx context.Context, updates map[string]any) error {
	paths := make([]string, 0, len(updates))
	for p := range updates {
		if _, err := Split(p); err != nil {
			return invalid("batch", p, err)
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for i := 1; i < len(paths); i++ {
		if Related(paths[i-1], paths[i]) {
			return invalid("batch", paths[i], fmt.Errorf("overlaps %s", paths[i-1]))
		}
	}
	writes := make(map[string]map[string][]byte, len(updates))
	for _, p := range paths {
		raw, err := encodeValue(updates[p])
		if err != nil {
			return invalid("batch", p, err)
		}
		leaves, err := flatten(p, raw)
		if err != nil {
			return invalid("batch", p, err)
		}
		writes[p] = leaves
	}
	if len(writes) == 0 {
		return nil
	}
	return t.applyAll(ctx, "batch", "", writes)
}

func (t *Tree) applyAll(ctx context.Context, op, label string, writes map[string]map[string][]byte) error {
	paths := make([]string, 0, len(writes))
	for p := range writes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return t.mutate(ctx, op, label, paths, func(b backend) error {
		for _, p := range paths {
			if err := replace(ctx, b, p, writes[p]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *Tree) mutate(ctx context.Context, op, path string, changed []string, fn func(backend) error) error {
	if err := ctx.Err(); err != nil {
		return wrap(op, path, err)
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return wrap(op, path, ErrClosed)
	}
	err := t.b.atomic(ctx, fn)
	t.mu.Unlock()
	if err != nil {
		return wrap(op, path, err)
	}
	t.hub.notify(changed...)
	return nil
}

// Close stops subscriptions and releases the backend.
func (t *Tree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.stopWatch != nil {
		t.stopWatch()
	}
	t.hub.close()
	return t.b.close()
}

// replace makes leaves the only documents at or below path.
func replace(ctx context.Context, b backend, path string, leaves map[string][]byte) error {
	if err := prune(ctx, b, path); err != nil {
		return err
	}
	if len(leaves) > 0 {
		segs := strings.Split(path, Separator)
		for i := 1; i < len(segs); i++ {
			if err := b.del(ctx, Join(segs[:i]...)); err != nil {
				return err
			}
		}
	}
	keys := make([]string, 0, len(leaves))
	for k := range leaves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := b.put(ctx, k, leaves[k]); err != nil {
			return err
		}
	}
	return nil
}

func prune(ctx context.Context, b backend, path string) error {
	docs, err := b.scan(ctx, path)
	if err != nil {
		return err
	}
	for k := range docs {
		if err := b.del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

var null = []byte("null")

// flatten splits a JSON value into leaf documents. Objects are descended
// into; arrays and scalars are leaves. null and empty objects store nothing.
func flatten(path string, raw json.RawMessage) (map[string][]byte, error) {
	out := map[string][]byte{}
	if err := flattenInto(path, raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(path string, raw json.RawMessage, out map[string][]byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return nil
	}
	if raw[0] != '{' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return err
		}
		out[path] = buf.Bytes()
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	for k, v := range obj {
		if err := checkKey(k); err != nil {
			return err
		}
		if err := flattenInto(Child(path, k), v, out); err != nil {
			return err
		}
	}
	return nil
}

func checkKey(k string) error {
	if strings.TrimSpace(k) == "" || strings.Contains(k, Separator) {
		return fmt.Errorf("invalid key %q", k)
	}
	return nil
}

// assemble rebuilds the value at base from its leaves.
func assemble(base string, docs map[string][]byte) (json.RawMessage, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if v, ok := docs[base]; ok && len(docs) == 1 {
		return json.RawMessage(v), nil
	}
	root := map[string]any{}
	for key, val := range docs {
		if key == base {
			continue
		}
		rel := strings.TrimPrefix(key, base+Separator)
		segs := strings.Split(rel, Separator)
		node := root
		for _, s := range segs[:len(segs)-1] {
			next, ok := node[s].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[s] = next
			}
			node = next
		}
		last := segs[len(segs)-1]
		if _, isDir := node[last].(map[string]any); isDir {
			continue
		}
		node[last] = json.RawMessage(val)
	}
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, errors.Join(errors.New("assemble"), err)
	}
	return raw, nil
}
