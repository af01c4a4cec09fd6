package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tableflip.dev/flow/pkg/cache"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/export"
	"tableflip.dev/flow/pkg/search"
	"tableflip.dev/flow/pkg/store"
)

// Service provides high-level diary operations for one signed-in user.
// It writes through the store and keeps the cache in step so CLIs and
// servers can share logic.
type Service struct {
	Store  store.Adapter
	Cache  *cache.Cache
	UserID string
	// Now defaults to time.Now.
	Now func() time.Time
	Log *slog.Logger
}

// ErrEntryNotFound is returned when an operation needs an existing entry.
var ErrEntryNotFound = fmt.Errorf("app: entry %w", store.ErrNotFound)

// EditRequest changes selected fields of an entry. Nil fields are kept.
type EditRequest struct {
	Title   *string
	Content *string
	Mood    *string
	Tags    *[]string
	Media   *[]entry.Media
	// Time moves the entry to another time of the same day.
	Time string
}

func (s *Service) check() error {
	if s.Store == nil {
		return errors.New("app: no store configured")
	}
	if s.UserID == "" {
		return ErrNoSession
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// refresh loads scope into the cache. A refresh overtaken by a newer one
// still leaves the cache current, so it is not an error here.
func (s *Service) refresh(ctx context.Context, scope entry.Scope) error {
	if s.Cache == nil {
		return errors.New("app: no cache configured")
	}
	err := s.Cache.Refresh(ctx, scope)
	if errors.Is(err, cache.ErrSuperseded) {
		return nil
	}
	return err
}

// Entries returns the entries inside scope, ordered by date and time.
func (s *Service) Entries(ctx context.Context, scope entry.Scope) ([]entry.Entry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, scope); err != nil {
		return nil, err
	}
	return s.Cache.InScope(scope), nil
}

// Day returns the timeline of one date.
func (s *Service) Day(ctx context.Context, date string) ([]entry.Entry, error) {
	if _, err := time.Parse(entry.LayoutDate, date); err != nil {
		return nil, &entry.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", date)}
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, entry.Day(date)); err != nil {
		return nil, err
	}
	return s.Cache.Get(date), nil
}

// Get returns one entry read from the store.
func (s *Service) Get(ctx context.Context, date, t string) (entry.Entry, error) {
	if err := s.check(); err != nil {
		return entry.Entry{}, err
	}
	if err := entry.ValidateKey(date, t); err != nil {
		return entry.Entry{}, err
	}
	raw, err := s.Store.Read(ctx, store.EntryPath(s.UserID, date, t))
	if err != nil {
		return entry.Entry{}, err
	}
	if raw == nil {
		return entry.Entry{}, ErrEntryNotFound
	}
	return entry.Decode(date, t, raw)
}

// Save writes e, replacing any entry at the same date and time. Missing
// date or time default to now. Invalid entries are rejected before the
// store is called.
func (s *Service) Save(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	if err := s.check(); err != nil {
		return entry.Entry{}, err
	}
	e = entry.Normalize(e)
	date, t := entry.Today(s.now())
	if e.Date == "" {
		e.Date = date
	}
	if e.Time == "" {
		e.Time = t
	}
	if e.Timestamp == nil {
		e.Timestamp = entry.NewTimestamp(s.now())
	}
	if err := s.write(ctx, e); err != nil {
		return entry.Entry{}, err
	}
	s.log().Debug("entry saved", "date", e.Date, "time", e.Time)
	return e, nil
}

func (s *Service) write(ctx context.Context, e entry.Entry) error {
	if err := entry.Validate(e); err != nil {
		return err
	}
	doc, err := entry.Encode(e)
	if err != nil {
		return err
	}
	if err := s.Store.Write(ctx, store.EntryPath(s.UserID, e.Date, e.Time), json.RawMessage(doc)); err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Upsert(e.Date, e.Time, e)
	}
	return nil
}

// Edit applies req to the entry at date and time. A new time moves the
// entry in one atomic batch.
func (s *Service) Edit(ctx context.Context, date, t string, req EditRequest) (entry.Entry, error) {
	current, err := s.Get(ctx, date, t)
	if err != nil {
		return entry.Entry{}, err
	}
	next := current.Clone()
	if req.Title != nil {
		next.Title = *req.Title
	}
	if req.Content != nil {
		next.Content = *req.Content
	}
	if req.Mood != nil {
		next.Mood = *req.Mood
	}
	if req.Tags != nil {
		next.Tags = append([]string(nil), (*req.Tags)...)
	}
	if req.Media != nil {
		next.Media = append([]entry.Media(nil), (*req.Media)...)
	}
	next = entry.Normalize(next)
	next.UpdatedAt = entry.NewTimestamp(s.now())

	if req.Time == "" || req.Time == t {
		if err := s.write(ctx, next); err != nil {
			return entry.Entry{}, err
		}
		return next, nil
	}
	next.Time = req.Time
	if err := s.move(ctx, current, next); err != nil {
		return entry.Entry{}, err
	}
	return next, nil
}

// Move changes the time key of an entry within its day. The old path is
// removed and the new one written in one batch; an occupied target is
// refused.
func (s *Service) Move(ctx context.Context, date, from, to string) (entry.Entry, error) {
	return s.Edit(ctx, date, from, EditRequest{Time: to})
}

func (s *Service) move(ctx context.Context, from, to entry.Entry) error {
	if err := entry.Validate(to); err != nil {
		return err
	}
	target := store.EntryPath(s.UserID, to.Date, to.Time)
	existing, err := s.Store.Read(ctx, target)
	if err != nil {
		return err
	}
	if existing != nil {
		return &entry.ValidationError{Field: "time", Reason: fmt.Sprintf("an entry already exists at %s", to.Time)}
	}
	doc, err := entry.Encode(to)
	if err != nil {
		return err
	}
	err = s.Store.BatchUpdate(ctx, map[string]any{
		store.EntryPath(s.UserID, from.Date, from.Time): nil,
		target: json.RawMessage(doc),
	})
	if err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Remove(from.Date, from.Time)
		s.Cache.Upsert(to.Date, to.Time, to)
	}
	s.log().Debug("entry moved", "date", to.Date, "from", from.Time, "to", to.Time)
	return nil
}

// Delete removes the entry at date and time. Deleting a missing entry is
// not an error.
func (s *Service) Delete(ctx context.Context, date, t string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := entry.ValidateKey(date, t); err != nil {
		return err
	}
	if err := s.Store.Remove(ctx, store.EntryPath(s.UserID, date, t)); err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Remove(date, t)
	}
	return nil
}

// Search evaluates q over every entry of the user.
func (s *Service) Search(ctx context.Context, q search.Query) ([]entry.Entry, error) {
	all, err := s.Entries(ctx, entry.All())
	if err != nil {
		return nil, err
	}
	return search.Evaluate(all, q), nil
}

// Tags returns the distinct tags of the user, sorted.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	if _, err := s.Entries(ctx, entry.All()); err != nil {
		return nil, err
	}
	return s.Cache.Tags(), nil
}

// TagCounts returns how many entries carry each tag.
func (s *Service) TagCounts(ctx context.Context) (map[string]int, error) {
	if _, err := s.Entries(ctx, entry.All()); err != nil {
		return nil, err
	}
	return s.Cache.Index().Counts(), nil
}

// Export renders scope in format and names the file it belongs in. Full
// JSON exports are wrapped in a backup envelope.
func (s *Service) Export(ctx context.Context, scope entry.Scope, format export.Format) ([]byte, string, error) {
	entries, err := s.Entries(ctx, scope)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	name := export.Filename(scope, format, now)
	switch format {
	case export.Text:
		return []byte(export.ToText(entries, scope.Kind != entry.ScopeDay)), name, nil
	case export.JSON:
		var data []byte
		if scope.Kind == entry.ScopeAll {
			data, err = export.NewBackup(s.UserID, entries, now).JSON()
		} else {
			data, err = export.ToJSON(entries)
		}
		if err != nil {
			return nil, "", err
		}
		return data, name, nil
	}
	return nil, "", fmt.Errorf("app: unknown export format %q", format)
}

// Settings are a free-form bag of per-user values.
type Settings map[string]any

// Preferences returns the saved preferences, empty when none exist.
func (s *Service) Preferences(ctx context.Context) (Settings, error) {
	return s.settings(ctx, store.PreferencesPath(s.UserID))
}

// SavePreferences merges prefs into the saved preferences. A nil value
// removes that key.
func (s *Service) SavePreferences(ctx context.Context, prefs Settings) error {
	return s.saveSettings(ctx, store.PreferencesPath(s.UserID), prefs)
}

// Profile returns the saved profile, empty when none exists.
func (s *Service) Profile(ctx context.Context) (Settings, error) {
	return s.settings(ctx, store.ProfilePath(s.UserID))
}

// SaveProfile merges profile into the saved profile.
func (s *Service) SaveProfile(ctx context.Context, profile Settings) error {
	return s.saveSettings(ctx, store.ProfilePath(s.UserID), profile)
}

func (s *Service) settings(ctx context.Context, path string) (Settings, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	out := Settings{}
	err := store.ReadInto(ctx, s.Store, path, &out)
	if errors.Is(err, store.ErrNotFound) {
		return Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) saveSettings(ctx context.Context, path string, values Settings) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	partial := make(map[string]any, len(values))
	for k, v := range values {
		partial[k] = v
	}
	return s.Store.Update(ctx, path, partial)
}
