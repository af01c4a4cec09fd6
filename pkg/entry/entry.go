// Package entry defines the diary record and the normalization applied to
// every document that crosses the storage boundary.
package entry

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// LayoutDate is the calendar key of a day, e.g. 2024-01-31.
	LayoutDate = "2006-01-02"
	// LayoutTime is the sub-key of an entry within a day, e.g. 09:30.
	LayoutTime = "15:04"
	// LayoutMonth is the key prefix shared by every day of a month.
	LayoutMonth = "2006-01"

	// MaxMedia is the number of images a single entry may embed.
	MaxMedia = 2
)

// Media is an image embedded in an entry as a data URI.
type Media struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name,omitempty"`
	DataURI string `json:"dataURI" validate:"required,startswith=data:image/"`
}

// NewMedia returns a media item with a fresh id.
func NewMedia(name, dataURI string) Media {
	return Media{
		ID:      uuid.NewString(),
		Name:    name,
		DataURI: dataURI,
	}
}

// Entry is one diary record. Date and Time identify it; within a date the
// time is unique and writing the same time again replaces the entry.
type Entry struct {
	Date      string     `json:"date,omitempty"`
	Time      string     `json:"time,omitempty"`
	Title     string     `json:"title" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	Mood      string     `json:"mood,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Media     []Media    `json:"media,omitempty" validate:"max=2,dive"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

// Key returns the date/time pair that identifies the entry.
func (e Entry) Key() string {
	return e.Date + "/" + e.Time
}

// HasTag reports whether the entry carries tag in its canonical form.
func (e Entry) HasTag(tag string) bool {
	want := CanonicalTag(tag)
	if want == "" {
		return false
	}
	for _, t := range e.Tags {
		if CanonicalTag(t) == want {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (e Entry) Clone() Entry {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.Media != nil {
		out.Media = append([]Media(nil), e.Media...)
	}
	if e.Timestamp != nil {
		ts := *e.Timestamp
		out.Timestamp = &ts
	}
	if e.UpdatedAt != nil {
		ts := *e.UpdatedAt
		out.UpdatedAt = &ts
	}
	return out
}

// SortByTime orders entries of one day by their time key. Zero padded HH:MM
// keys sort lexicographically in chronological order.
func SortByTime(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})
}

// SortByKey orders entries by date, then time.
func SortByKey(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].Time < entries[j].Time
	})
}

// Today returns the date and time keys for now in local time.
func Today(now time.Time) (string, string) {
	local := now.Local()
	return local.Format(LayoutDate), local.Format(LayoutTime)
}

// Month returns the month prefix of a date key, or "" when the date is malformed.
func Month(date string) string {
	t, err := time.Parse(LayoutDate, date)
	if err != nil {
		return ""
	}
	return t.Format(LayoutMonth)
}
