package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch reports file changes below the base path as changed tree paths
// until ctx is cancelled.
func (p *diskvBackend) watch(ctx context.Context, log *slog.Logger, notify func(paths ...string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				log.Warn("store: watcher close", "error", err)
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	go func() {
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		throttle := newPathThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("store: watch error", "error", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						absDir := filepath.Clean(evt.Name)
						// MkdirAll may have created a whole chain before the
						// event arrived.
						nested, err := collectDirs(absDir)
						if err != nil {
							log.Warn("store: enumerate directories", "dir", absDir, "error", err)
						}
						for _, dir := range nested {
							if _, found := watched[dir]; found {
								continue
							}
							if err := watcher.Add(dir); err != nil {
								log.Warn("store: watch", "dir", dir, "error", err)
								continue
							}
							watched[dir] = struct{}{}
						}
						if key := p.dirKey(absDir); key != "" {
							throttle.Enqueue(key, notify)
						}
						continue
					}
				}
				if evt.Op&fsnotify.Remove == fsnotify.Remove {
					delete(watched, filepath.Clean(evt.Name))
				}
				if key := p.keyForFile(evt.Name); key != "" {
					throttle.Enqueue(key, notify)
				}
			}
		}
	}()
	return nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

func (p *diskvBackend) relParts(path string) []string {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	return strings.Split(rel, string(os.PathSeparator))
}

// keyForFile maps a leaf file to its tree path.
func (p *diskvBackend) keyForFile(path string) string {
	parts := p.relParts(path)
	if len(parts) == 0 {
		return ""
	}
	return pathToKeyTransform(keyPath(parts))
}

// dirKey maps a directory to the tree path of the object it holds.
func (p *diskvBackend) dirKey(path string) string {
	parts := p.relParts(path)
	if len(parts) == 0 {
		return ""
	}
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		seg, ok := decodeSegment(part)
		if !ok {
			return ""
		}
		segs = append(segs, seg)
	}
	return Join(segs...)
}

// pathThrottle coalesces rapid change notifications so subscribers re-read
// once per burst of filesystem activity instead of on every single write.
type pathThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newPathThrottle(delay time.Duration) *pathThrottle {
	return &pathThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *pathThrottle) Enqueue(path string, send func(paths ...string)) {
	t.mu.Lock()
	t.pending[path] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *pathThrottle) flush(send func(paths ...string)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	send(paths...)
}

func (t *pathThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
