package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tableflip.dev/flow/pkg/entry"
)

// MoodCount is the number of entries recorded with one mood.
type MoodCount struct {
	Mood  string
	Count int
}

// Stats summarizes a user's diary.
type Stats struct {
	Entries int
	Days    int
	Tags    int
	Moods   []MoodCount
	// FirstDate and LastDate are empty when there are no entries.
	FirstDate string
	LastDate  string
	// MemberSince is the earliest recorded write time, if any.
	MemberSince time.Time
}

// Stats returns counts over every entry of the user.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.Entries(ctx, entry.All())
	if err != nil {
		return Stats{}, err
	}
	out := Stats{
		Entries: len(all),
		Days:    len(s.Cache.Dates()),
		Tags:    s.Cache.Index().Len(),
	}
	moods := map[string]int{}
	for _, e := range all {
		if e.Mood != "" {
			moods[e.Mood]++
		}
		if e.Timestamp != nil && !e.Timestamp.IsZero() {
			if out.MemberSince.IsZero() || e.Timestamp.Before(out.MemberSince) {
				out.MemberSince = e.Timestamp.Time
			}
		}
	}
	if len(all) > 0 {
		out.FirstDate = all[0].Date
		out.LastDate = all[len(all)-1].Date
	}
	for mood, n := range moods {
		out.Moods = append(out.Moods, MoodCount{Mood: mood, Count: n})
	}
	sort.SliceStable(out.Moods, func(i, j int) bool {
		if out.Moods[i].Count != out.Moods[j].Count {
			return out.Moods[i].Count > out.Moods[j].Count
		}
		return out.Moods[i].Mood < out.Moods[j].Mood
	})
	return out, nil
}

// CalendarDay marks one day of a month.
type CalendarDay struct {
	Date    string
	Entries int
}

// DatesWithEntries lists the days of month (YYYY-MM) holding at least one
// entry, ascending.
func (s *Service) DatesWithEntries(ctx context.Context, month string) ([]CalendarDay, error) {
	if _, err := time.Parse(entry.LayoutMonth, month); err != nil {
		return nil, &entry.ValidationError{Field: "month", Reason: fmt.Sprintf("%q is not YYYY-MM", month)}
	}
	entries, err := s.Entries(ctx, entry.MonthOf(month))
	if err != nil {
		return nil, err
	}
	byDate := map[string]int{}
	for _, e := range entries {
		byDate[e.Date]++
	}
	out := make([]CalendarDay, 0, len(byDate))
	for date, n := range byDate {
		out = append(out, CalendarDay{Date: date, Entries: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out, nil
}

// Since returns every entry dated on or after date (YYYY-MM-DD), oldest
// first.
func (s *Service) Since(ctx context.Context, date string) ([]entry.Entry, error) {
	if _, err := time.Parse(entry.LayoutDate, date); err != nil {
		return nil, &entry.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", date)}
	}
	all, err := s.Entries(ctx, entry.All())
	if err != nil {
		return nil, err
	}
	i := sort.Search(len(all), func(i int) bool {
		return all[i].Date >= date
	})
	return all[i:], nil
}
