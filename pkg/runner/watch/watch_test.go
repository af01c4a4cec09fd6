package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/auth"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/store"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchPrintsChanges(t *testing.T) {
	color.NoColor = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := store.NewMemory()
	provider, err := auth.NewLocal("u1")
	require.NoError(t, err)
	m := &app.Manager{Store: mem, Auth: provider, Live: true}
	m.Start(ctx)
	defer m.Close()

	var out syncBuffer
	done := make(chan error, 1)
	w := Watch{Manager: m, Out: &out, JSON: true}
	go func() { done <- w.Do(ctx) }()

	// A second writer sharing the store, as another process would.
	doc, err := entry.Encode(entry.Entry{Title: "Lunch", Content: "soup"})
	require.NoError(t, err)
	require.NoError(t, mem.Write(ctx, store.EntryPath("u1", "2024-01-01", "12:00"), doc))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"action":"create"`)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), `"title":"Lunch"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
