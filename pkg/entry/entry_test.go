package entry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalTag(t *testing.T) {
	cases := map[string]string{
		"work":     "work",
		"#Work":    "work",
		"  ##Home ": "home",
		"#":        "",
		"   ":      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalTag(in), "input %q", in)
	}
}

func TestNormalizeTagsDedupesInOrder(t *testing.T) {
	got := NormalizeTags([]string{"#Work", "family", "work", "", "#"})
	assert.Equal(t, []string{"work", "family"}, got)
	assert.Nil(t, NormalizeTags([]string{"", " # "}))
}

func TestParseTags(t *testing.T) {
	got := ParseTags("#work, family\ttravel,,#Work")
	assert.Equal(t, []string{"work", "family", "travel"}, got)
}

func TestDecodeLegacyDocument(t *testing.T) {
	raw := []byte(`{
		"title": " Morning ",
		"description": "walked the dog",
		"mood": "happy",
		"tags": {"1": "#Dog", "0": "Outside"},
		"timestamp": 1704096000000,
		"date": "1999-01-01"
	}`)
	e, err := Decode("2024-01-01", "09:00", raw)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", e.Date)
	assert.Equal(t, "09:00", e.Time)
	assert.Equal(t, "Morning", e.Title)
	assert.Equal(t, "walked the dog", e.Content)
	assert.Equal(t, []string{"outside", "dog"}, e.Tags)
	require.NotNil(t, e.Timestamp)
	assert.True(t, e.Timestamp.Equal(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)))
}

func TestDecodeTagsAsText(t *testing.T) {
	e, err := Decode("2024-01-01", "09:00", []byte(`{"title":"a","content":"b","tags":"#one two"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, e.Tags)
}

func TestDecodeDaySortsByTime(t *testing.T) {
	raw := []byte(`{
		"14:00": {"title":"late","content":"x"},
		"08:15": {"title":"early","content":"y"},
		"10:00": null
	}`)
	entries, err := DecodeDay("2024-02-03", raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "early", entries[0].Title)
	assert.Equal(t, "late", entries[1].Title)
}

func TestDecodeTreeEmpty(t *testing.T) {
	days, err := DecodeTree(nil)
	require.NoError(t, err)
	assert.Empty(t, days)

	days, err = DecodeTree([]byte("null"))
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestEncodeOmitsKey(t *testing.T) {
	e := Entry{
		Date:      "2024-01-01",
		Time:      "09:00",
		Title:     "t",
		Content:   "c",
		Timestamp: NewTimestamp(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
	}
	raw, err := Encode(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "date")
	assert.NotContains(t, m, "time")
	assert.Equal(t, "2024-01-01T09:00:00Z", m["timestamp"])

	back, err := Decode("2024-01-01", "09:00", raw)
	require.NoError(t, err)
	assert.Equal(t, e, back)
}

func TestValidate(t *testing.T) {
	ok := Entry{Date: "2024-01-01", Time: "09:00", Title: "t", Content: "c"}
	require.NoError(t, Validate(ok))

	tests := map[string]struct {
		mutate func(*Entry)
		field  string
	}{
		"missing title":   {func(e *Entry) { e.Title = "" }, "title"},
		"missing content": {func(e *Entry) { e.Content = "" }, "content"},
		"bad date":        {func(e *Entry) { e.Date = "01/01/2024" }, "date"},
		"bad time":        {func(e *Entry) { e.Time = "9am" }, "time"},
		"too many images": {func(e *Entry) {
			m := NewMedia("a", "data:image/png;base64,AA==")
			e.Media = []Media{m, m, m}
		}, "media"},
		"media not an image": {func(e *Entry) {
			e.Media = []Media{NewMedia("a", "data:text/plain;base64,AA==")}
		}, "media"},
		"oversized": {func(e *Entry) { e.Content = strings.Repeat("x", MaxDocumentSize) }, "document"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := ok
			tc.mutate(&e)
			err := Validate(e)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateMessages(t *testing.T) {
	err := Validate(Entry{Date: "2024-01-01", Time: "09:00", Content: "c"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Equal(t, "title is a required field", verr.Reason)

	m := NewMedia("a", "data:image/png;base64,AA==")
	err = Validate(Entry{Date: "2024-01-01", Time: "09:00", Title: "t", Content: "c", Media: []Media{m, m, m}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "media must contain at maximum 2")
}

func TestHasTag(t *testing.T) {
	e := Entry{Tags: []string{"work", "Life"}}
	assert.True(t, e.HasTag("#Work"))
	assert.True(t, e.HasTag("life"))
	assert.False(t, e.HasTag("travel"))
	assert.False(t, e.HasTag(" # "))
}

func TestSortByKey(t *testing.T) {
	entries := []Entry{
		{Date: "2024-01-02", Time: "08:00"},
		{Date: "2024-01-01", Time: "12:00"},
		{Date: "2024-01-01", Time: "07:30"},
	}
	SortByKey(entries)
	assert.Equal(t, "2024-01-01/07:30", entries[0].Key())
	assert.Equal(t, "2024-01-01/12:00", entries[1].Key())
	assert.Equal(t, "2024-01-02/08:00", entries[2].Key())
}

func TestMonth(t *testing.T) {
	assert.Equal(t, "2024-03", Month("2024-03-09"))
	assert.Equal(t, "", Month("March"))
}
