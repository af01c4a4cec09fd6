// Package tags derives the set of distinct tags present in a collection of
// entries.
package tags

import (
	"sort"

	"tableflip.dev/flow/pkg/entry"
)

// Normalize returns the canonical form of a tag: no leading '#', lower case.
func Normalize(tag string) string {
	return entry.CanonicalTag(tag)
}

// Index is the tag set derived from a cache state, with the number of
// entries carrying each tag.
type Index struct {
	counts map[string]int
}

// Recompute builds a fresh index from entries. The result depends only on
// the entries, so recomputing from the same state yields an equal index.
func Recompute(entries []entry.Entry) Index {
	idx := Index{counts: map[string]int{}}
	for _, e := range entries {
		seen := map[string]struct{}{}
		for _, raw := range e.Tags {
			tag := Normalize(raw)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			idx.counts[tag]++
		}
	}
	return idx
}

// Has reports whether any entry carries tag.
func (i Index) Has(tag string) bool {
	_, ok := i.counts[Normalize(tag)]
	return ok
}

// Count returns how many entries carry tag.
func (i Index) Count(tag string) int {
	return i.counts[Normalize(tag)]
}

func (i Index) Len() int {
	return len(i.counts)
}

// Sorted returns the tags in lexicographic order.
func (i Index) Sorted() []string {
	out := make([]string, 0, len(i.counts))
	for tag := range i.counts {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Counts returns a copy of the per-tag entry counts.
func (i Index) Counts() map[string]int {
	out := make(map[string]int, len(i.counts))
	for k, v := range i.counts {
		out[k] = v
	}
	return out
}
