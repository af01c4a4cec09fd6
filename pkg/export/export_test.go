package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/flow/pkg/entry"
)

const header = "YOUR DIGITAL FLOW - DIARY ENTRIES\n==================================\n\n"

func day() []entry.Entry {
	return []entry.Entry{
		{Date: "2024-01-01", Time: "10:00", Title: "B", Content: "second", Tags: []string{"y"}},
		{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "first", Mood: "happy", Tags: []string{"x"}},
	}
}

func TestToTextDay(t *testing.T) {
	want := header +
		"TIME: 9:00 AM\nTITLE: A\nMOOD: happy\nTAGS: x\n\nfirst\n\n---------------------------\n\n" +
		"TIME: 10:00 AM\nTITLE: B\nMOOD: None\nTAGS: y\n\nsecond\n\n---------------------------\n\n"
	assert.Equal(t, want, ToText(day(), false))
}

func TestToTextGrouped(t *testing.T) {
	entries := append(day(), entry.Entry{Date: "2023-12-31", Time: "23:30", Title: "", Content: ""})
	got := ToText(entries, true)

	assert.True(t, strings.HasPrefix(got, header+"DATE: Sunday, December 31, 2023\n-----------------\n\nTIME: 11:30 PM\nTITLE: Untitled\nMOOD: None\nTAGS: None\n\n(No description)\n"))
	assert.Equal(t, 1, strings.Count(got, "DATE: Monday, January 1, 2024\n"))
	assert.Equal(t, 3, strings.Count(got, "TIME: "))
	assert.Less(t, strings.Index(got, "TIME: 9:00 AM"), strings.Index(got, "TIME: 10:00 AM"))
}

func TestToTextEmpty(t *testing.T) {
	assert.Equal(t, header, ToText(nil, false))
	assert.Equal(t, header, ToText([]entry.Entry{}, true))
}

func TestToJSON(t *testing.T) {
	raw, err := ToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	in := day()
	in[0].Timestamp = entry.NewTimestamp(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	raw, err = ToJSON(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"date\": \"2024-01-01\"")

	back, err := FromJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestToJSONEmptyLists(t *testing.T) {
	in := []entry.Entry{
		{Date: "2024-01-01", Time: "09:00", Title: "A", Content: "first", Tags: []string{}, Media: []entry.Media{}},
		{Date: "2024-01-01", Time: "10:00", Title: "B", Content: "second", Tags: []string{"#Work", " "}},
	}
	raw, err := ToJSON(in)
	require.NoError(t, err)

	back, err := FromJSON(raw)
	require.NoError(t, err)
	require.Len(t, back, 2)
	for i := range in {
		assert.Equal(t, entry.Normalize(in[i]), back[i])
	}
	assert.Nil(t, back[0].Tags)
	assert.Equal(t, []string{"work"}, back[1].Tags)

	again, err := ToJSON(back)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(again))
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "diary-entries-2024-05-01.txt", Filename(entry.Day("2024-05-01"), Text, now))
	assert.Equal(t, "diary-entries-2024-05.json", Filename(entry.MonthOf("2024-05"), JSON, now))
	assert.Equal(t, "diary-export-2024-05-06.json", Filename(entry.All(), JSON, now))
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "12:00 AM", ClockTime("00:00"))
	assert.Equal(t, "12:15 PM", ClockTime("12:15"))
	assert.Equal(t, "bogus", ClockTime("bogus"))
}

func TestBackupJSON(t *testing.T) {
	b := NewBackup("u1", nil, time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC))
	raw, err := b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"exportDate":"2024-05-06T12:00:00Z","userId":"u1","entries":[]}`, string(raw))
}
