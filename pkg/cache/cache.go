// Package cache holds the most recently fetched view of one user's entries
// so listing, searching and exporting do not need a store round trip.
//
// State lives locally and is replaced per scope by Refresh or by snapshots
// delivered from a store subscription. Consumers read copies; mutations are
// announced on the Events channel.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/store"
	"tableflip.dev/flow/pkg/tags"
)

// ErrSuperseded is returned by a Refresh overtaken by a newer refresh or
// snapshot for the same scope. The cache is left as the newer call set it.
var ErrSuperseded = errors.New("cache: refresh superseded")

// ChangeType describes a cache mutation.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Change is emitted for every entry added, modified or dropped.
type Change struct {
	Action ChangeType
	Date   string
	Time   string
	// Entry is the new state; nil for deletes.
	Entry *entry.Entry
}

type flight struct {
	id     uint64
	scope  entry.Scope
	cancel context.CancelFunc
}

// Cache mirrors the entries of one user.
type Cache struct {
	adapter store.Adapter
	uid     string
	log     *slog.Logger

	mu      sync.RWMutex
	days    map[string]map[string]entry.Entry
	index   tags.Index
	seq     uint64
	flights map[string]*flight
	closed  bool

	eventCh chan Change
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New returns an empty cache for uid reading from adapter.
func New(adapter store.Adapter, uid string, opts ...Option) *Cache {
	c := &Cache{
		adapter: adapter,
		uid:     uid,
		log:     slog.Default(),
		days:    make(map[string]map[string]entry.Entry),
		index:   tags.Recompute(nil),
		flights: make(map[string]*flight),
		eventCh: make(chan Change, 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the user the cache belongs to.
func (c *Cache) UserID() string {
	return c.uid
}

// Events exposes change notifications. Slow consumers miss events rather
// than block the cache; a later Get reflects every change.
func (c *Cache) Events() <-chan Change {
	return c.eventCh
}

// Refresh fetches scope from the store and replaces the cached state for
// it. Issuing a newer Refresh for the same scope cancels this one, which
// then returns ErrSuperseded without touching the cache. On a store error
// the cache is unchanged.
func (c *Cache) Refresh(ctx context.Context, scope entry.Scope) error {
	key := scope.String()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("cache: closed")
	}
	if prev, ok := c.flights[key]; ok {
		prev.cancel()
	}
	c.seq++
	id := c.seq
	c.flights[key] = &flight{id: id, scope: scope, cancel: cancel}
	c.mu.Unlock()

	days, err := c.fetch(ctx, scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.flights[key]; !ok || f.id != id {
		return ErrSuperseded
	}
	delete(c.flights, key)
	if err != nil {
		return fmt.Errorf("cache: refresh %s: %w", scope, err)
	}
	if c.closed {
		return errors.New("cache: closed")
	}
	c.replaceLocked(scope, days)
	return nil
}

// Apply installs raw, the store value for scope, as the authoritative state
// of that scope. Refreshes still in flight for an overlapping scope are
// superseded.
func (c *Cache) Apply(scope entry.Scope, raw json.RawMessage) error {
	days, err := decodeScope(scope, raw)
	if err != nil {
		return fmt.Errorf("cache: apply %s: %w", scope, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for key, f := range c.flights {
		if overlaps(f.scope, scope) {
			f.cancel()
			delete(c.flights, key)
		}
	}
	c.replaceLocked(scope, days)
	return nil
}

// Watch keeps scope current by applying every snapshot the store delivers
// until ctx is cancelled or the returned function is called.
func (c *Cache) Watch(ctx context.Context, scope entry.Scope) (func(), error) {
	path := store.EntriesPath(c.uid)
	if scope.Kind == entry.ScopeDay {
		path = store.DayPath(c.uid, scope.Value)
	}
	return c.adapter.Subscribe(ctx, path, func(raw json.RawMessage) {
		if err := c.Apply(scope, raw); err != nil {
			c.log.Warn("cache: dropping snapshot", "scope", scope.String(), "error", err)
		}
	}, func(err error) {
		c.log.Warn("cache: subscription error", "scope", scope.String(), "error", err)
	})
}

func (c *Cache) fetch(ctx context.Context, scope entry.Scope) (map[string][]entry.Entry, error) {
	if c.adapter == nil {
		return nil, errors.New("no store configured")
	}
	path := store.EntriesPath(c.uid)
	if scope.Kind == entry.ScopeDay {
		path = store.DayPath(c.uid, scope.Value)
	}
	raw, err := c.adapter.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeScope(scope, raw)
}

// decodeScope turns the stored value for scope into entries per date. Day
// scopes are read at the day path; wider scopes at the entries root.
func decodeScope(scope entry.Scope, raw json.RawMessage) (map[string][]entry.Entry, error) {
	if scope.Kind == entry.ScopeDay {
		entries, err := entry.DecodeDay(scope.Value, raw)
		if err != nil {
			return nil, err
		}
		return map[string][]entry.Entry{scope.Value: entries}, nil
	}
	all, err := entry.DecodeTree(raw)
	if err != nil {
		return nil, err
	}
	for date := range all {
		if !scope.Contains(date) {
			delete(all, date)
		}
	}
	return all, nil
}

func overlaps(a, b entry.Scope) bool {
	switch {
	case a.Kind == entry.ScopeAll || b.Kind == entry.ScopeAll:
		return true
	case a.Kind == b.Kind:
		return a.Value == b.Value
	case a.Kind == entry.ScopeDay:
		return b.Contains(a.Value)
	default:
		return a.Contains(b.Value)
	}
}

// replaceLocked makes days the cached state of every date inside scope.
func (c *Cache) replaceLocked(scope entry.Scope, days map[string][]entry.Entry) {
	for date, old := range c.days {
		if !scope.Contains(date) {
			continue
		}
		if _, ok := days[date]; ok {
			continue
		}
		for t := range old {
			c.emit(Change{Action: ChangeDelete, Date: date, Time: t})
		}
		delete(c.days, date)
	}
	for date, entries := range days {
		if !scope.Contains(date) {
			continue
		}
		old := c.days[date]
		next := make(map[string]entry.Entry, len(entries))
		for _, e := range entries {
			next[e.Time] = e
		}
		c.diffLocked(date, old, next)
		if len(next) == 0 {
			delete(c.days, date)
			continue
		}
		c.days[date] = next
	}
	c.reindexLocked()
}

func (c *Cache) diffLocked(date string, old, next map[string]entry.Entry) {
	for t := range old {
		if _, ok := next[t]; !ok {
			c.emit(Change{Action: ChangeDelete, Date: date, Time: t})
		}
	}
	times := make([]string, 0, len(next))
	for t := range next {
		times = append(times, t)
	}
	sort.Strings(times)
	for _, t := range times {
		e := next[t].Clone()
		prev, ok := old[t]
		switch {
		case !ok:
			c.emit(Change{Action: ChangeCreate, Date: date, Time: t, Entry: &e})
		case !sameEntry(prev, e):
			c.emit(Change{Action: ChangeUpdate, Date: date, Time: t, Entry: &e})
		}
	}
}

func sameEntry(a, b entry.Entry) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ra) == string(rb)
}

// Upsert records e at date and time ahead of, or after, the matching store
// write.
func (c *Cache) Upsert(date, time string, e entry.Entry) {
	e = entry.Normalize(e)
	e.Date, e.Time = date, time

	c.mu.Lock()
	defer c.mu.Unlock()
	day, ok := c.days[date]
	if !ok {
		day = make(map[string]entry.Entry)
		c.days[date] = day
	}
	_, existed := day[time]
	day[time] = e
	action := ChangeCreate
	if existed {
		action = ChangeUpdate
	}
	cp := e.Clone()
	c.emit(Change{Action: action, Date: date, Time: time, Entry: &cp})
	c.reindexLocked()
}

// Remove drops the entry at date and time. Removing an absent entry leaves
// the cache unchanged.
func (c *Cache) Remove(date, time string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	day, ok := c.days[date]
	if !ok {
		return
	}
	if _, ok := day[time]; !ok {
		return
	}
	delete(day, time)
	if len(day) == 0 {
		delete(c.days, date)
	}
	c.emit(Change{Action: ChangeDelete, Date: date, Time: time})
	c.reindexLocked()
}

// Get returns the entries of date ordered by time. An uncached date yields
// an empty slice.
func (c *Cache) Get(date string) []entry.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneDay(c.days[date])
}

// Entry returns one cached entry.
func (c *Cache) Entry(date, time string) (entry.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.days[date][time]
	if !ok {
		return entry.Entry{}, false
	}
	return e.Clone(), true
}

// InScope returns every cached entry inside scope, ordered by date and time.
func (c *Cache) InScope(scope entry.Scope) []entry.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entry.Entry, 0)
	for date, day := range c.days {
		if scope.Contains(date) {
			out = append(out, cloneDay(day)...)
		}
	}
	entry.SortByKey(out)
	return out
}

// All returns every cached entry ordered by date and time.
func (c *Cache) All() []entry.Entry {
	return c.InScope(entry.All())
}

// Dates returns the cached dates that hold entries, ascending.
func (c *Cache) Dates() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.days))
	for date, day := range c.days {
		if len(day) > 0 {
			out = append(out, date)
		}
	}
	sort.Strings(out)
	return out
}

// Tags returns the distinct canonical tags, sorted.
func (c *Cache) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.Sorted()
}

// Index returns the current tag index.
func (c *Cache) Index() tags.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Close cancels in-flight refreshes and ends the event stream.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for key, f := range c.flights {
		f.cancel()
		delete(c.flights, key)
	}
	c.days = make(map[string]map[string]entry.Entry)
	c.index = tags.Recompute(nil)
	close(c.eventCh)
}

func (c *Cache) reindexLocked() {
	all := make([]entry.Entry, 0)
	for _, day := range c.days {
		for _, e := range day {
			all = append(all, e)
		}
	}
	c.index = tags.Recompute(all)
}

func (c *Cache) emit(ev Change) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- ev:
	default:
	}
}

func cloneDay(day map[string]entry.Entry) []entry.Entry {
	out := make([]entry.Entry, 0, len(day))
	for _, e := range day {
		out = append(out, e.Clone())
	}
	entry.SortByTime(out)
	return out
}
