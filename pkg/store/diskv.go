package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

const docSuffix = ".doc"

// OpenDiskv returns a Tree keeping one file per leaf document below
// basePath. Changes made by other processes reach subscribers through a
// filesystem watch.
func OpenDiskv(basePath string, opts ...Option) (*Tree, error) {
	if basePath == "" {
		return nil, errors.New("store: diskv base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	b := &diskvBackend{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Other processes write the same files; a read cache would go stale.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
	}
	t := newTree(b, opts...)
	t.watch = b.watch
	return t, nil
}

type diskvBackend struct {
	d        *diskv.Diskv
	basePath string
}

func (p *diskvBackend) get(_ context.Context, key string) ([]byte, bool, error) {
	if !p.d.Has(key) {
		return nil, false, nil
	}
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (p *diskvBackend) put(_ context.Context, key string, value []byte) error {
	return p.d.Write(key, value)
}

func (p *diskvBackend) del(_ context.Context, key string) error {
	if !p.d.Has(key) {
		return nil
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (p *diskvBackend) scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	out := map[string][]byte{}
	for key := range p.d.Keys(ctx.Done()) {
		if key == "" || !Within(key, prefix) {
			continue
		}
		val, err := p.d.Read(key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out[key] = val
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *diskvBackend) atomic(ctx context.Context, fn func(backend) error) error {
	return withJournal(ctx, p, fn)
}

func (p *diskvBackend) close() error {
	return nil
}

// keyToPathTransform stores users/u1/entries/2024-01-01/09:00/title as
// nested directories of encoded segments. Encoding keeps characters such as
// ':' out of file names; the suffix keeps leaves apart from directories.
func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, Separator)
	dirs := make([]string, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		dirs = append(dirs, encodeSegment(part))
	}
	return &diskv.PathKey{
		Path:     dirs,
		FileName: encodeSegment(parts[len(parts)-1]) + docSuffix,
	}
}

// pathToKeyTransform reverses keyToPathTransform. Files not written by the
// store map to the empty key.
func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if !strings.HasSuffix(pathKey.FileName, docSuffix) {
		return ""
	}
	parts := make([]string, 0, len(pathKey.Path)+1)
	for _, dir := range pathKey.Path {
		if dir == "" {
			continue
		}
		seg, ok := decodeSegment(dir)
		if !ok {
			return ""
		}
		parts = append(parts, seg)
	}
	leaf, ok := decodeSegment(strings.TrimSuffix(pathKey.FileName, docSuffix))
	if !ok {
		return ""
	}
	return Join(append(parts, leaf)...)
}

func encodeSegment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func decodeSegment(s string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(b) == 0 {
		return "", false
	}
	return string(b), true
}

func keyPath(parts []string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}
