// Package timeutil parses calendar look-back windows such as "1w" or
// "1mo2w3d".
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/flow/pkg/entry"
)

// DefaultWindow is used when no window is given.
const DefaultWindow = "1w"

var (
	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitDays      = map[string]int{
		"d":     1,
		"day":   1,
		"days":  1,
		"w":     7,
		"wk":    7,
		"wks":   7,
		"week":  7,
		"weeks": 7,
	}
	unitMonths = map[string]bool{
		"mo":     true,
		"mon":    true,
		"month":  true,
		"months": true,
	}
)

// Window is a span of calendar months and days. Months are applied with
// time.AddDate, so "1mo" from March 31 reaches back to March 3 or 2.
type Window struct {
	Months int
	Days   int
}

// ParseWindow reads a window like "3d", "2w" or "1mo2w". Empty input is
// DefaultWindow.
func ParseWindow(input string) (Window, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	var w Window
	for len(remaining) > 0 {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return Window{}, &entry.ValidationError{Field: "window", Reason: fmt.Sprintf("invalid segment %q", strings.TrimSpace(remaining))}
		}
		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return Window{}, &entry.ValidationError{Field: "window", Reason: fmt.Sprintf("invalid value %q", matches[1])}
		}
		switch unit := matches[2]; {
		case unitMonths[unit]:
			w.Months += value
		case unitDays[unit] > 0:
			w.Days += value * unitDays[unit]
		default:
			return Window{}, &entry.ValidationError{Field: "window", Reason: fmt.Sprintf("unsupported unit %q", unit)}
		}
		remaining = remaining[len(matches[0]):]
	}

	if w.Months == 0 && w.Days == 0 {
		return Window{}, &entry.ValidationError{Field: "window", Reason: "must be greater than zero"}
	}
	return w, nil
}

// Since returns the first date (YYYY-MM-DD) inside the window ending on
// the date of now. A one day window is just today.
func (w Window) Since(now time.Time) string {
	return now.AddDate(0, -w.Months, -w.Days+1).Format(entry.LayoutDate)
}

// String renders the window compactly, months first, e.g. "1mo2w3d".
func (w Window) String() string {
	var b strings.Builder
	if w.Months > 0 {
		fmt.Fprintf(&b, "%dmo", w.Months)
	}
	if weeks := w.Days / 7; weeks > 0 {
		fmt.Fprintf(&b, "%dw", weeks)
	}
	if days := w.Days % 7; days > 0 {
		fmt.Fprintf(&b, "%dd", days)
	}
	if b.Len() == 0 {
		return "0d"
	}
	return b.String()
}
