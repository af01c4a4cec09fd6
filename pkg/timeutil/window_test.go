package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/flow/pkg/entry"
)

func TestParseWindowDefault(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, Window{Days: 7}, w)
	assert.Equal(t, "1w", w.String())
}

func TestParseWindowComposite(t *testing.T) {
	w, err := ParseWindow("1mo 2w 10d")
	require.NoError(t, err)
	assert.Equal(t, Window{Months: 1, Days: 24}, w)
	assert.Equal(t, "1mo3w3d", w.String())
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3h", "0d"} {
		_, err := ParseWindow(in)
		assert.True(t, entry.IsValidation(err), in)
	}
}

func TestSince(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-10", Window{Days: 1}.Since(now))
	assert.Equal(t, "2024-03-04", Window{Days: 7}.Since(now))
	assert.Equal(t, "2024-02-11", Window{Months: 1}.Since(now))
}
