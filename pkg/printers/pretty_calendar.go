package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/entry"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints month (YYYY-MM) as a grid with days holding entries in
// bold. today is highlighted when it falls inside the month.
func (pp *PrettyPrint) Calendar(month string, days []app.CalendarDay, today time.Time) error {
	then, err := time.Parse(entry.LayoutMonth, month)
	if err != nil {
		return &entry.ValidationError{Field: "month", Reason: fmt.Sprintf("%q is not YYYY-MM", month)}
	}
	count := make([]int, DaysIn(then))
	for _, d := range days {
		t, err := time.Parse(entry.LayoutDate, d.Date)
		if err != nil || t.Year() != then.Year() || t.Month() != then.Month() {
			continue
		}
		count[t.Day()-1] += d.Entries
	}
	todayDay := 0
	if today.Year() == then.Year() && today.Month() == then.Month() {
		todayDay = today.Day()
	}
	pp.PrintMonthCount(then, count, todayDay)
	return nil
}

// PrintMonthCount prints the grid for then. count holds one value per day;
// today, when non-zero, is underlined.
func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int, today int) {
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Format("January 2006")
	mid := (width - len(m)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(pp.out(), "%s%s\n", strings.Repeat(" ", mid), m)
	_, _ = fmt.Fprintln(pp.out(), "Su Mo Tu We Th Fr Sa")

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(pp.out(), "   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < DaysIn(then); i++ {
		printer := l1
		if i < len(count) && count[i] > 0 {
			printer = l2
		}
		if i+1 == today {
			printer = color.New(color.Underline, color.Bold)
		}
		_, _ = printer.Fprintf(pp.out(), "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(pp.out(), "\n")
		}
	}
	_, _ = fmt.Fprint(pp.out(), "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
