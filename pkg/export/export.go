// Package export renders entries as pretty JSON or as a plain-text diary.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"tableflip.dev/flow/pkg/entry"
)

const (
	textTitle     = "YOUR DIGITAL FLOW - DIARY ENTRIES"
	titleRule     = "=================================="
	dateUnderline = "-----------------"
	entrySep      = "---------------------------"
)

// Format is an export representation.
type Format string

const (
	JSON Format = "json"
	Text Format = "txt"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "txt", "text":
		return Text, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ToJSON renders entries in their normalized form as an indented JSON
// array. An empty collection renders as []. FromJSON returns exactly
// entry.Normalize of every input entry.
func ToJSON(entries []entry.Entry) ([]byte, error) {
	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry.Normalize(e))
	}
	return json.MarshalIndent(out, "", "  ")
}

// FromJSON reads the output of ToJSON back.
func FromJSON(raw []byte) ([]entry.Entry, error) {
	var entries []entry.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ToText renders entries as a readable diary. Entries are printed in date
// then time order. When grouped, each date gets a header line.
func ToText(entries []entry.Entry, grouped bool) string {
	var b strings.Builder
	_ = WriteText(&b, entries, grouped)
	return b.String()
}

// WriteText is ToText writing to w.
func WriteText(w io.Writer, entries []entry.Entry, grouped bool) error {
	sorted := append([]entry.Entry(nil), entries...)
	entry.SortByKey(sorted)

	tw := &textWriter{w: w}
	tw.printf("%s\n%s\n\n", textTitle, titleRule)
	lastDate := ""
	for i, e := range sorted {
		if grouped && (i == 0 || e.Date != lastDate) {
			tw.printf("DATE: %s\n%s\n\n", LongDate(e.Date), dateUnderline)
		}
		lastDate = e.Date
		writeEntry(tw, e)
	}
	return tw.err
}

func writeEntry(tw *textWriter, e entry.Entry) {
	title := orDefault(e.Title, "Untitled")
	mood := orDefault(e.Mood, "None")
	tags := "None"
	if len(e.Tags) > 0 {
		tags = strings.Join(e.Tags, ", ")
	}
	content := orDefault(e.Content, "(No description)")
	tw.printf("TIME: %s\n", ClockTime(e.Time))
	tw.printf("TITLE: %s\nMOOD: %s\nTAGS: %s\n", title, mood, tags)
	tw.printf("\n%s\n", content)
	tw.printf("\n%s\n\n", entrySep)
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// LongDate renders a date key as "Monday, January 1, 2024". Malformed keys
// are returned unchanged.
func LongDate(date string) string {
	t, err := time.Parse(entry.LayoutDate, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

// ClockTime renders a time key in 12-hour form, e.g. "9:05 PM".
func ClockTime(key string) string {
	t, err := time.Parse(entry.LayoutTime, key)
	if err != nil {
		return key
	}
	return t.Format("3:04 PM")
}
