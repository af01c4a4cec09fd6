package entry

import (
	"fmt"
	"strings"
	"time"
)

// ScopeKind is the granularity of a refresh or export.
type ScopeKind string

const (
	ScopeDay   ScopeKind = "date"
	ScopeMonth ScopeKind = "month"
	ScopeAll   ScopeKind = "all"
)

// Scope selects a date range: one day, one month or everything.
type Scope struct {
	Kind  ScopeKind
	Value string
}

func Day(date string) Scope { return Scope{Kind: ScopeDay, Value: date} }

func MonthOf(month string) Scope { return Scope{Kind: ScopeMonth, Value: month} }

func All() Scope { return Scope{Kind: ScopeAll} }

// ParseScope reads "all", a YYYY-MM month or a YYYY-MM-DD date.
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == string(ScopeAll):
		return All(), nil
	case len(s) == len(LayoutMonth):
		if _, err := time.Parse(LayoutMonth, s); err == nil {
			return MonthOf(s), nil
		}
	case len(s) == len(LayoutDate):
		if _, err := time.Parse(LayoutDate, s); err == nil {
			return Day(s), nil
		}
	}
	return Scope{}, &ValidationError{Field: "scope", Reason: fmt.Sprintf("%q is not all, YYYY-MM or YYYY-MM-DD", s)}
}

// Contains reports whether date falls inside the scope.
func (s Scope) Contains(date string) bool {
	switch s.Kind {
	case ScopeDay:
		return date == s.Value
	case ScopeMonth:
		return strings.HasPrefix(date, s.Value+"-")
	case ScopeAll:
		return true
	}
	return false
}

func (s Scope) String() string {
	if s.Kind == ScopeAll {
		return string(ScopeAll)
	}
	return s.Value
}
