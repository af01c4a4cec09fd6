package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tableflip.dev/flow/pkg/entry"
)

func fixture() []entry.Entry {
	return []entry.Entry{
		{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "Coffee with Sam", Mood: "happy", Tags: []string{"x"}},
		{Date: "2024-01-01", Time: "10:00", Title: "B", Content: "standup", Mood: "tired", Tags: []string{"y", "work"}},
		{Date: "2024-01-03", Time: "07:00", Title: "Run", Content: "5k", Mood: "Happy 😊"},
		{Date: "2024-01-02", Time: "21:00", Title: "Notes", Content: "reading", Mood: "happy", Tags: []string{"Work"}},
	}
}

func titles(entries []entry.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := map[string]struct {
		q    Query
		want []string
	}{
		"empty query is identity": {
			q:    Query{},
			want: []string{"A", "B", "Run", "Notes"},
		},
		"blank keyword is identity": {
			q:    Query{Keyword: "   "},
			want: []string{"A", "B", "Run", "Notes"},
		},
		"keyword in content ignores case": {
			q:    Query{Keyword: "COFFEE"},
			want: []string{"A"},
		},
		"keyword in title": {
			q:    Query{Keyword: "run"},
			want: []string{"Run"},
		},
		"keyword in tags": {
			q:    Query{Keyword: "wor"},
			want: []string{"B", "Notes"},
		},
		"mood is exact": {
			q:    Query{Mood: "happy"},
			want: []string{"A", "Notes"},
		},
		"mood ignores surrounding space": {
			q:    Query{Mood: " happy "},
			want: []string{"A", "Notes"},
		},
		"blank mood is identity": {
			q:    Query{Mood: "  "},
			want: []string{"A", "B", "Run", "Notes"},
		},
		"tag with hash prefix": {
			q:    Query{Tags: []string{"#x"}},
			want: []string{"A"},
		},
		"tags are OR": {
			q:    Query{Tags: []string{"x", "work"}},
			want: []string{"A", "B", "Notes"},
		},
		"filters combine": {
			q:    Query{Mood: "happy", Tags: []string{"work"}},
			want: []string{"Notes"},
		},
		"no match": {
			q:    Query{Keyword: "zebra"},
			want: []string{},
		},
		"sort by date desc": {
			q:    Query{Mood: "", SortByDateDesc: true},
			want: []string{"Run", "Notes", "B", "A"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(Evaluate(fixture(), tc.q)))
		})
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Evaluate(in, Query{SortByDateDesc: true})
	assert.Equal(t, fixture(), in)
}

func TestEvaluateExcludesUntagged(t *testing.T) {
	got := Evaluate(fixture(), Query{Tags: []string{"work"}})
	for _, e := range got {
		assert.NotEmpty(t, e.Tags)
	}
}
