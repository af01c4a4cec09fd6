package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/entry"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// OnOptions selects a single date.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2020-2-28", --on="2/28" or --on=yesterday.`)
}

// GetOn returns the selected date as YYYY-MM-DD, or "" when unset.
func (o *OnOptions) GetOn(now time.Time) (string, error) {
	return ParseDate(o.OnString, now)
}

// Day is GetOn defaulting to the date of now.
func (o *OnOptions) Day(now time.Time) (string, error) {
	date, err := o.GetOn(now)
	if err != nil || date != "" {
		return date, err
	}
	return now.Format(entry.LayoutDate), nil
}

// ParseDate reads the date forms accepted by --on.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "today":
		return now.Format(entry.LayoutDate), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(entry.LayoutDate), nil
	}
	t, err := time.Parse(layoutISO, s)
	if err != nil {
		// Let the year be the same.
		t, err = time.Parse(layoutISOShort, s)
		if err != nil {
			return "", &entry.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a date", s)}
		}
		month, day := t.Month(), t.Day()
		year := now.Year()
		// A diary looks back: 12/30 said on 1/2 is last December.
		if time.Date(year, month, day, 0, 0, 0, 0, now.Location()).After(now) {
			year--
		}
		t = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		if t.Month() != month {
			return "", &entry.ValidationError{Field: "date", Reason: fmt.Sprintf("%q does not exist in %d", s, year)}
		}
	}
	return t.Format(entry.LayoutDate), nil
}

// ScopeOptions selects a day, a month or everything.
type ScopeOptions struct {
	OnOptions
	Month string
	All   bool
}

func AddScopeArgs(cmd *cobra.Command, o *ScopeOptions) {
	AddOnArgs(cmd, &o.OnOptions)
	cmd.Flags().StringVarP(&o.Month, "month", "m", "",
		`Specify a month, example: --month="2024-01".`)
	cmd.Flags().BoolVar(&o.All, "all", false,
		"Every entry in the diary.")
}

// Scope resolves the flags; with nothing set it is today, or everything
// when allByDefault is true.
func (o *ScopeOptions) Scope(now time.Time, allByDefault bool) (entry.Scope, error) {
	set := 0
	for _, on := range []bool{o.OnString != "", o.Month != "", o.All} {
		if on {
			set++
		}
	}
	if set > 1 {
		return entry.Scope{}, fmt.Errorf("only one of --on, --month and --all may be set")
	}
	switch {
	case o.All:
		return entry.All(), nil
	case o.Month != "":
		return entry.ParseScope(o.Month)
	case o.OnString != "":
		date, err := o.GetOn(now)
		if err != nil {
			return entry.Scope{}, err
		}
		return entry.Day(date), nil
	case allByDefault:
		return entry.All(), nil
	}
	return entry.Day(now.Format(entry.LayoutDate)), nil
}
