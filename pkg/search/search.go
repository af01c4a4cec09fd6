// Package search filters a collection of entries by keyword, mood and tags.
package search

import (
	"sort"
	"strings"

	"tableflip.dev/flow/pkg/entry"
)

// Query selects entries. Zero fields do not constrain the result.
type Query struct {
	// Keyword matches title, content or any tag, ignoring case.
	Keyword string `json:"keyword,omitempty"`
	// Mood must equal the entry mood exactly.
	Mood string `json:"mood,omitempty"`
	// Tags match when the entry carries at least one of them.
	Tags []string `json:"tags,omitempty"`
	// SortByDateDesc orders matches newest first instead of input order.
	SortByDateDesc bool `json:"sortByDateDesc,omitempty"`
}

// Empty reports whether q has no filters.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Keyword) == "" && strings.TrimSpace(q.Mood) == "" && len(entry.NormalizeTags(q.Tags)) == 0
}

// Evaluate returns the entries matching q. The input is never modified; the
// result keeps input order unless q.SortByDateDesc is set.
func Evaluate(entries []entry.Entry, q Query) []entry.Entry {
	out := make([]entry.Entry, 0, len(entries))
	if q.Empty() {
		out = append(out, entries...)
	} else {
		m := newMatcher(q)
		for _, e := range entries {
			if m.match(e) {
				out = append(out, e)
			}
		}
	}
	if q.SortByDateDesc {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Date != out[j].Date {
				return out[i].Date > out[j].Date
			}
			return out[i].Time > out[j].Time
		})
	}
	return out
}

type matcher struct {
	keyword string
	mood    string
	tags    []string
}

func newMatcher(q Query) matcher {
	m := matcher{
		keyword: strings.ToLower(strings.TrimSpace(q.Keyword)),
		mood:    strings.TrimSpace(q.Mood),
		tags:    entry.NormalizeTags(q.Tags),
	}
	return m
}

func (m matcher) match(e entry.Entry) bool {
	if m.mood != "" && e.Mood != m.mood {
		return false
	}
	if len(m.tags) > 0 && !m.anyTag(e) {
		return false
	}
	if m.keyword != "" && !m.keywordIn(e) {
		return false
	}
	return true
}

func (m matcher) anyTag(e entry.Entry) bool {
	for _, t := range m.tags {
		if e.HasTag(t) {
			return true
		}
	}
	return false
}

func (m matcher) keywordIn(e entry.Entry) bool {
	if strings.Contains(strings.ToLower(e.Title), m.keyword) ||
		strings.Contains(strings.ToLower(e.Content), m.keyword) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), m.keyword) {
			return true
		}
	}
	return false
}
