// Package printers renders diary data for a terminal.
package printers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/export"
)

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
	// Content prints the entry body below each timeline row.
	Content bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

// Day prints the timeline of a single date.
func (pp *PrettyPrint) Day(date string, entries ...entry.Entry) {
	pp.TitleWithCount(export.LongDate(date), len(entries))
	pp.Timeline(entries...)
}

// Timeline prints entries as rows, grouped under a heading per date when
// they span more than one day.
func (pp *PrettyPrint) Timeline(entries ...entry.Entry) {
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	dim := color.New(color.Faint)
	mood := color.New(color.FgHiYellow, color.Italic)
	tag := color.New(color.FgCyan)

	date := entries[0].Date
	multi := false
	for _, e := range entries {
		if e.Date != date {
			multi = true
			break
		}
	}

	date = ""
	for _, e := range entries {
		if multi && e.Date != date {
			if date != "" {
				pp.NewLine()
			}
			date = e.Date
			pp.Title(export.LongDate(date))
		}
		title := e.Title
		if strings.TrimSpace(title) == "" {
			title = "<untitled>"
		}
		_, _ = dim.Fprintf(pp.out(), "%8s  ", export.ClockTime(e.Time))
		_, _ = fmt.Fprint(pp.out(), title)
		if e.Mood != "" {
			_, _ = mood.Fprintf(pp.out(), "  %s", e.Mood)
		}
		for _, t := range e.Tags {
			_, _ = tag.Fprintf(pp.out(), " #%s", t)
		}
		_, _ = fmt.Fprintln(pp.out(), "")
		if pp.Content && strings.TrimSpace(e.Content) != "" {
			for _, line := range strings.Split(strings.TrimRight(e.Content, "\n"), "\n") {
				_, _ = fmt.Fprintf(pp.out(), "          %s\n", line)
			}
		}
	}
	pp.NewLine()
}

// Entry prints every field of one entry.
func (pp *PrettyPrint) Entry(e entry.Entry) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 72
	tbl.AddRow(bold.Sprint("Date"), export.LongDate(e.Date))
	tbl.AddRow(bold.Sprint("Time"), export.ClockTime(e.Time))
	tbl.AddRow(bold.Sprint("Title"), e.Title)
	if e.Mood != "" {
		tbl.AddRow(bold.Sprint("Mood"), e.Mood)
	}
	if len(e.Tags) > 0 {
		tbl.AddRow(bold.Sprint("Tags"), strings.Join(e.Tags, ", "))
	}
	for _, m := range e.Media {
		tbl.AddRow(bold.Sprint("Media"), m.Name)
	}
	if e.UpdatedAt != nil && !e.UpdatedAt.IsZero() {
		tbl.AddRow(bold.Sprint("Updated"), e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
	_, _ = fmt.Fprintln(pp.out(), e.Content)
	pp.NewLine()
}

// Tags prints tag usage, most used first.
func (pp *PrettyPrint) Tags(counts map[string]int) {
	if len(counts) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " no tags\n\n")
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Tag"), bold.Sprint("Entries"))
	for _, name := range names {
		tbl.AddRow("#"+name, counts[name])
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Stats prints a diary summary.
func (pp *PrettyPrint) Stats(s app.Stats) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Entries"), s.Entries)
	tbl.AddRow(bold.Sprint("Days"), s.Days)
	tbl.AddRow(bold.Sprint("Tags"), s.Tags)
	if s.FirstDate != "" {
		tbl.AddRow(bold.Sprint("First"), export.LongDate(s.FirstDate))
		tbl.AddRow(bold.Sprint("Last"), export.LongDate(s.LastDate))
	}
	if !s.MemberSince.IsZero() {
		tbl.AddRow(bold.Sprint("Writing since"), s.MemberSince.Local().Format("January 2, 2006"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)

	if len(s.Moods) == 0 {
		return
	}
	pp.NewLine()
	moods := uitable.New()
	moods.Separator = "  "
	moods.AddRow(bold.Sprint("Mood"), bold.Sprint("Entries"))
	for _, m := range s.Moods {
		moods.AddRow(m.Mood, m.Count)
	}
	moods.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), moods)
}
