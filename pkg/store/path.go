package store

import (
	"fmt"
	"strings"
)

// Separator joins path segments.
const Separator = "/"

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Split validates p and returns its segments. Segments must be non-empty.
func Split(p string) ([]string, error) {
	if p == "" {
		return nil, fmt.Errorf("empty path")
	}
	segs := strings.Split(p, Separator)
	for _, s := range segs {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("path %q has an empty segment", p)
		}
	}
	return segs, nil
}

// Child appends key to p.
func Child(p, key string) string {
	return p + Separator + key
}

// Within reports whether p is base or lies under it.
func Within(p, base string) bool {
	return p == base || strings.HasPrefix(p, base+Separator)
}

// Related reports whether a change at one path is visible from the other:
// they are equal or one is an ancestor of the other.
func Related(a, b string) bool {
	return Within(a, b) || Within(b, a)
}

func UserPath(uid string) string {
	return Join("users", uid)
}

// EntriesPath is the root of every entry of a user.
func EntriesPath(uid string) string {
	return Join("users", uid, "entries")
}

// DayPath holds the entries of one date, keyed by time.
func DayPath(uid, date string) string {
	return Join("users", uid, "entries", date)
}

// EntryPath is the document of one entry.
func EntryPath(uid, date, time string) string {
	return Join("users", uid, "entries", date, time)
}

func PreferencesPath(uid string) string {
	return Join("users", uid, "preferences")
}

func ProfilePath(uid string) string {
	return Join("users", uid, "profile")
}
