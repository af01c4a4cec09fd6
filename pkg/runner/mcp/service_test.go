package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/cache"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mem := store.NewMemory()
	c := cache.New(mem, "u1")
	t.Cleanup(c.Close)
	return NewService(Static{Svc: &app.Service{
		Store:  mem,
		Cache:  c,
		UserID: "u1",
		Now:    func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) },
	}})
}

func TestServiceSaveDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.SaveEntry(ctx, SaveEntryOptions{Title: "Morning", Content: "coffee", Tags: []string{"#Home"}})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", dto.Date)
	assert.Equal(t, "09:00", dto.Time)
	assert.Equal(t, []string{"home"}, dto.Tags)
	assert.NotEmpty(t, dto.Created)

	got, err := svc.GetEntry(ctx, "2024-01-01", "09:00")
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Content)
}

func TestServiceSaveRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SaveEntry(context.Background(), SaveEntryOptions{Date: "2024-01-01", Time: "09:00", Content: "no title"})
	assert.True(t, entry.IsValidation(err))
}

func TestServiceSaveMedia(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	png := MediaInput{Name: "a.png", DataURI: "data:image/png;base64,iVBORw0KGgo="}
	dto, err := svc.SaveEntry(ctx, SaveEntryOptions{
		Date: "2024-01-01", Time: "09:00", Title: "Pics", Content: "two", Media: []MediaInput{png, png},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, dto.MediaCount)

	_, err = svc.SaveEntry(ctx, SaveEntryOptions{
		Date: "2024-01-01", Time: "10:00", Title: "Pics", Content: "three", Media: []MediaInput{png, png, png},
	})
	assert.True(t, entry.IsValidation(err))

	_, err = svc.SaveEntry(ctx, SaveEntryOptions{
		Date: "2024-01-01", Time: "11:00", Title: "Text", Content: "not an image",
		Media: []MediaInput{{Name: "x.txt", DataURI: "data:text/plain;base64,aGk="}},
	})
	assert.True(t, entry.IsValidation(err))
}

func TestServiceSearchAndTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, e := range []SaveEntryOptions{
		{Date: "2024-01-01", Time: "08:00", Title: "Run", Content: "5k", Mood: "happy", Tags: []string{"health"}},
		{Date: "2024-01-02", Time: "08:00", Title: "Meeting", Content: "notes", Mood: "tired", Tags: []string{"work"}},
		{Date: "2024-01-03", Time: "08:00", Title: "Swim", Content: "pool", Mood: "happy", Tags: []string{"health", "work"}},
	} {
		_, err := svc.SaveEntry(ctx, e)
		require.NoError(t, err)
	}

	results, err := svc.SearchEntries(ctx, SearchOptions{Mood: "happy", Newest: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Swim", results[0].Title)

	limited, err := svc.SearchEntries(ctx, SearchOptions{Tags: []string{"work"}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagSummary{{Tag: "health", Entries: 2}, {Tag: "work", Entries: 2}}, tags)
}

func TestServiceMoveAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.SaveEntry(ctx, SaveEntryOptions{Date: "2024-01-01", Time: "08:00", Title: "A", Content: "a"})
	require.NoError(t, err)

	moved, err := svc.MoveEntry(ctx, "2024-01-01", "08:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, "10:30", moved.Time)

	day, err := svc.ListEntries(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "10:30", day[0].Time)

	require.NoError(t, svc.DeleteEntry(ctx, "2024-01-01", "10:30"))
	day, err = svc.ListEntries(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestServiceExport(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.SaveEntry(ctx, SaveEntryOptions{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a"})
	require.NoError(t, err)

	res, err := svc.Export(ctx, "2024-01-01", "txt")
	require.NoError(t, err)
	assert.Equal(t, "diary-entries-2024-01-01.txt", res.Filename)
	assert.Contains(t, res.Content, "TITLE: A")

	_, err = svc.Export(ctx, "2024", "json")
	assert.True(t, entry.IsValidation(err))
}

func TestServiceWithoutSession(t *testing.T) {
	svc := NewService(Static{})
	_, err := svc.ListEntries(context.Background(), "all")
	assert.ErrorIs(t, err, app.ErrNoSession)
}

func TestToolsRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	srv := Runner{Sessions: svc.Sessions}.NewServer()

	type toolResult struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	call := func(name string, args map[string]any) toolResult {
		t.Helper()
		raw, err := json.Marshal(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "tools/call",
			"params":  map[string]any{"name": name, "arguments": args},
		})
		require.NoError(t, err)
		out, err := json.Marshal(srv.HandleMessage(ctx, raw))
		require.NoError(t, err)
		var res toolResult
		require.NoError(t, json.Unmarshal(out, &res), string(out))
		return res
	}

	saved := call("save_entry", map[string]any{
		"date": "2024-01-01", "time": "07:15", "title": "Dawn", "content": "quiet", "tags": "calm, #Morning",
	})
	assert.False(t, saved.Result.IsError)

	listed := call("list_tags", map[string]any{})
	require.False(t, listed.Result.IsError)
	require.NotEmpty(t, listed.Result.Content)
	assert.Contains(t, listed.Result.Content[0].Text, `"morning"`)

	bad := call("delete_entry", map[string]any{"date": "2024-01-01"})
	assert.True(t, bad.Result.IsError)
}
