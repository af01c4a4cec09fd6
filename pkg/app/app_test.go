package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/flow/pkg/auth"
	"tableflip.dev/flow/pkg/cache"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/export"
	"tableflip.dev/flow/pkg/search"
	"tableflip.dev/flow/pkg/store"
)

// recordingStore counts mutating calls made to the wrapped adapter.
type recordingStore struct {
	store.Adapter
	mu      sync.Mutex
	writes  int
	batches []map[string]any
}

func (r *recordingStore) Write(ctx context.Context, path string, value any) error {
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	return r.Adapter.Write(ctx, path, value)
}

func (r *recordingStore) BatchUpdate(ctx context.Context, updates map[string]any) error {
	r.mu.Lock()
	r.batches = append(r.batches, updates)
	r.mu.Unlock()
	return r.Adapter.BatchUpdate(ctx, updates)
}

var fixedNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *recordingStore) {
	t.Helper()
	rec := &recordingStore{Adapter: store.NewMemory()}
	return &Service{
		Store:  rec,
		Cache:  cache.New(rec, "u1"),
		UserID: "u1",
		Now:    func() time.Time { return fixedNow },
	}, rec
}

func TestSaveAndDay(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a", Tags: []string{"#X"}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "08:30", Title: "B", Content: "b"})
	require.NoError(t, err)

	day, err := svc.Day(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "08:30", day[0].Time)
	assert.Equal(t, "09:00", day[1].Time)
	assert.Equal(t, []string{"x"}, day[1].Tags)
	require.NotNil(t, day[1].Timestamp)

	empty, err := svc.Day(ctx, "2030-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSaveDefaultsTime(t *testing.T) {
	svc, _ := newService(t)
	e, err := svc.Save(context.Background(), entry.Entry{Title: "now", Content: "x"})
	require.NoError(t, err)
	date, tm := entry.Today(fixedNow)
	assert.Equal(t, date, e.Date)
	assert.Equal(t, tm, e.Time)
}

func TestSaveLastWriteWins(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a", Mood: "happy"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "B", Content: "b"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "2024-01-01", "09:00")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Title)
	assert.Empty(t, got.Mood)
}

func TestSaveRejectsInvalidWithoutWriting(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	tests := map[string]entry.Entry{
		"no title":   {Date: "2024-01-01", Time: "09:00", Content: "a"},
		"no content": {Date: "2024-01-01", Time: "09:00", Title: "a"},
		"oversized":  {Date: "2024-01-01", Time: "09:00", Title: "a", Content: strings.Repeat("x", entry.MaxDocumentSize+1)},
	}
	for name, e := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Save(ctx, e)
			require.Error(t, err)
			assert.True(t, entry.IsValidation(err))
		})
	}
	assert.Zero(t, rec.writes)
}

func TestEditKeepsTimeAndMerges(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a", Mood: "happy"})
	require.NoError(t, err)

	title := "A2"
	got, err := svc.Edit(ctx, "2024-01-01", "09:00", EditRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)
	assert.Equal(t, "happy", got.Mood)
	assert.Equal(t, "09:00", got.Time)
	require.NotNil(t, got.UpdatedAt)

	_, err = svc.Edit(ctx, "2024-01-01", "10:00", EditRequest{Title: &title})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMoveUsesOneBatch(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "11:00", Title: "C", Content: "c"})
	require.NoError(t, err)

	moved, err := svc.Move(ctx, "2024-01-01", "09:00", "10:15")
	require.NoError(t, err)
	assert.Equal(t, "10:15", moved.Time)

	require.Len(t, rec.batches, 1)
	assert.Len(t, rec.batches[0], 2)
	assert.Contains(t, rec.batches[0], store.EntryPath("u1", "2024-01-01", "09:00"))
	assert.Nil(t, rec.batches[0][store.EntryPath("u1", "2024-01-01", "09:00")])

	day, err := svc.Day(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "10:15", day[0].Time)
	assert.Equal(t, "A", day[0].Title)

	_, err = svc.Move(ctx, "2024-01-01", "10:15", "11:00")
	require.Error(t, err)
	assert.True(t, entry.IsValidation(err))
	assert.Len(t, rec.batches, 1)
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "2024-01-01", "10:00"))
	require.NoError(t, svc.Delete(ctx, "2024-01-02", "10:00"))
	day, err := svc.Day(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, day, 1)

	require.NoError(t, svc.Delete(ctx, "2024-01-01", "09:00"))
	day, err = svc.Day(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestSearchAndTags(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, e := range []entry.Entry{
		{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a", Tags: []string{"#x"}},
		{Date: "2024-01-01", Time: "10:00", Title: "B", Content: "b", Tags: []string{"#y"}},
		{Date: "2024-01-05", Time: "10:00", Title: "C", Content: "c", Tags: []string{"x"}},
	} {
		_, err := svc.Save(ctx, e)
		require.NoError(t, err)
	}

	got, err := svc.Search(ctx, search.Query{Tags: []string{"x"}, SortByDateDesc: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Title)
	assert.Equal(t, "A", got[1].Title)

	tags, err := svc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tags)

	counts, err := svc.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 2, "y": 1}, counts)
}

func TestExport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a"})
	require.NoError(t, err)

	data, name, err := svc.Export(ctx, entry.Day("2024-01-01"), export.Text)
	require.NoError(t, err)
	assert.Equal(t, "diary-entries-2024-01-01.txt", name)
	assert.NotContains(t, string(data), "DATE:")
	assert.Contains(t, string(data), "TITLE: A")

	data, name, err = svc.Export(ctx, entry.MonthOf("2024-01"), export.Text)
	require.NoError(t, err)
	assert.Equal(t, "diary-entries-2024-01.txt", name)
	assert.Contains(t, string(data), "DATE: Monday, January 1, 2024")

	data, name, err = svc.Export(ctx, entry.All(), export.JSON)
	require.NoError(t, err)
	assert.Equal(t, "diary-export-2024-01-01.json", name)
	var backup export.Backup
	require.NoError(t, json.Unmarshal(data, &backup))
	assert.Equal(t, "u1", backup.UserID)
	assert.Len(t, backup.Entries, 1)

	data, _, err = svc.Export(ctx, entry.Day("2030-01-01"), export.JSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPreferencesMerge(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	prefs, err := svc.Preferences(ctx)
	require.NoError(t, err)
	assert.Empty(t, prefs)

	require.NoError(t, svc.SavePreferences(ctx, Settings{"theme": "dark", "notifications": true}))
	require.NoError(t, svc.SavePreferences(ctx, Settings{"theme": "light"}))
	prefs, err = svc.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{"theme": "light", "notifications": true}, prefs)

	require.NoError(t, svc.SaveProfile(ctx, Settings{"displayName": "Sam"}))
	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sam", profile["displayName"])
}

func TestStatsAndCalendar(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, e := range []entry.Entry{
		{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a", Mood: "happy", Tags: []string{"x"}},
		{Date: "2024-01-01", Time: "10:00", Title: "B", Content: "b", Mood: "happy"},
		{Date: "2024-01-20", Time: "10:00", Title: "C", Content: "c", Mood: "sad", Tags: []string{"y"}},
		{Date: "2024-02-02", Time: "10:00", Title: "D", Content: "d"},
	} {
		_, err := svc.Save(ctx, e)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Entries)
	assert.Equal(t, 3, stats.Days)
	assert.Equal(t, 2, stats.Tags)
	assert.Equal(t, []MoodCount{{Mood: "happy", Count: 2}, {Mood: "sad", Count: 1}}, stats.Moods)
	assert.Equal(t, "2024-01-01", stats.FirstDate)
	assert.Equal(t, "2024-02-02", stats.LastDate)
	assert.True(t, stats.MemberSince.Equal(fixedNow))

	days, err := svc.DatesWithEntries(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, []CalendarDay{{Date: "2024-01-01", Entries: 2}, {Date: "2024-01-20", Entries: 1}}, days)

	_, err = svc.DatesWithEntries(ctx, "January")
	assert.True(t, entry.IsValidation(err))

	recent, err := svc.Since(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-01-20", recent[0].Date)
	assert.Equal(t, "2024-02-02", recent[1].Date)
}

func TestServiceWithoutUser(t *testing.T) {
	svc := &Service{Store: store.NewMemory()}
	_, err := svc.Entries(context.Background(), entry.All())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerFollowsAuth(t *testing.T) {
	provider, err := auth.NewLocal("")
	require.NoError(t, err)
	m := &Manager{Store: store.NewMemory(), Auth: provider}

	var seen []string
	m.OnSessionChange(func(s *Session) {
		if s == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, s.UserID)
	})
	m.Start(context.Background())
	defer m.Close()

	_, err = m.Service()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, provider.SignIn("u1"))
	svc, err := m.Service()
	require.NoError(t, err)
	_, err = svc.Save(context.Background(), entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "a"})
	require.NoError(t, err)
	first, _ := m.Session()
	assert.Len(t, first.Cache.All(), 1)

	require.NoError(t, provider.SignIn("u2"))
	second, err := m.Session()
	require.NoError(t, err)
	assert.Equal(t, "u2", second.UserID)
	assert.Empty(t, first.Cache.All())

	provider.SignOut()
	_, err = m.Session()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, []string{"", "u1", "u2", ""}, seen)
}
