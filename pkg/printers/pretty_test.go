package printers

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/entry"
)

func init() {
	color.NoColor = true
}

func TestTimelineGroupsByDate(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Timeline(
		entry.Entry{Date: "2024-01-01", Time: "09:00", Title: "Walk", Mood: "happy", Tags: []string{"health"}},
		entry.Entry{Date: "2024-01-02", Time: "21:30", Title: ""},
	)

	out := buf.String()
	assert.Contains(t, out, "Monday, January 1, 2024")
	assert.Contains(t, out, "Tuesday, January 2, 2024")
	assert.Contains(t, out, "9:00 AM  Walk  happy #health")
	assert.Contains(t, out, "9:30 PM  <untitled>")
}

func TestTimelineEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Timeline()
	assert.Equal(t, " none\n\n", buf.String())
}

func TestTagsOrdersByCount(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Tags(map[string]int{"work": 1, "health": 3})

	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("#health")), bytes.Index(buf.Bytes(), []byte("#work")))
	assert.Contains(t, out, "Entries")
}

func TestCalendar(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	err := pp.Calendar("2024-02", []app.CalendarDay{{Date: "2024-02-29", Entries: 2}}, time.Time{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "February 2024")
	assert.Contains(t, out, "29")
	assert.NotContains(t, out, "30")
	assert.Equal(t, 29, DaysIn(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Thursday, StartDay(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	pp := PrettyPrint{Out: &bytes.Buffer{}}
	err := pp.Calendar("2024/02", nil, time.Now())
	assert.True(t, entry.IsValidation(err))
}
