package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tableflip.dev/flow/pkg/entry"
)

func sample() []entry.Entry {
	return []entry.Entry{
		{Date: "2024-01-01", Time: "09:00", Tags: []string{"#X", "work"}},
		{Date: "2024-01-01", Time: "10:00", Tags: []string{"#y", " x "}},
		{Date: "2024-01-02", Time: "08:00"},
		{Date: "2024-01-03", Time: "08:00", Tags: []string{"work", "#work", "#"}},
	}
}

func TestRecompute(t *testing.T) {
	idx := Recompute(sample())
	assert.Equal(t, []string{"work", "x", "y"}, idx.Sorted())
	assert.Equal(t, 2, idx.Count("x"))
	assert.Equal(t, 2, idx.Count("#Work"))
	assert.Equal(t, 1, idx.Count("y"))
	assert.True(t, idx.Has("#y"))
	assert.False(t, idx.Has("z"))
	assert.Equal(t, 3, idx.Len())
}

func TestRecomputeIdempotent(t *testing.T) {
	entries := sample()
	first := Recompute(entries)
	second := Recompute(entries)
	assert.Equal(t, first.Counts(), second.Counts())
	assert.Equal(t, first.Sorted(), second.Sorted())
}

func TestRecomputeEmpty(t *testing.T) {
	idx := Recompute(nil)
	assert.Empty(t, idx.Sorted())
	assert.Zero(t, idx.Len())
}
