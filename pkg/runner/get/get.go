// Package get lists diary entries.
package get

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/printers"
)

type Get struct {
	Scope   entry.Scope
	Service *app.Service
	Out     io.Writer
	// Content prints entry bodies under each row.
	Content bool
	// Time selects a single entry of a day scope.
	Time string
	// Since, when set, replaces the scope with every entry dated on or
	// after it. Label names the window in the heading.
	Since string
	Label string
}

// Do prints the entries of the scope. With Time set it prints one entry.
func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	pp := printers.PrettyPrint{Out: n.Out, Content: n.Content}

	if n.Time != "" {
		if n.Scope.Kind != entry.ScopeDay {
			return &entry.ValidationError{Field: "time", Reason: "a time needs a single date"}
		}
		e, err := n.Service.Get(ctx, n.Scope.Value, n.Time)
		if err != nil {
			return err
		}
		pp.Entry(e)
		return nil
	}

	entries, err := n.Entries(ctx)
	if err != nil {
		return err
	}
	pp.NewLine()
	switch {
	case n.Since != "":
		pp.TitleWithCount("Last "+n.Label, len(entries))
		pp.Timeline(entries...)
	case n.Scope.Kind == entry.ScopeDay:
		pp.Day(n.Scope.Value, entries...)
	default:
		pp.TitleWithCount(title(n.Scope), len(entries))
		pp.Timeline(entries...)
	}
	return nil
}

// Entries returns the entries of the scope, or the one entry at Time.
func (n *Get) Entries(ctx context.Context) ([]entry.Entry, error) {
	if n.Service == nil {
		return nil, errors.New("can not get, no service")
	}
	if n.Time != "" && n.Scope.Kind == entry.ScopeDay {
		e, err := n.Service.Get(ctx, n.Scope.Value, n.Time)
		if err != nil {
			return nil, err
		}
		return []entry.Entry{e}, nil
	}
	if n.Since != "" {
		return n.Service.Since(ctx, n.Since)
	}
	return n.Service.Entries(ctx, n.Scope)
}

func title(s entry.Scope) string {
	if s.Kind == entry.ScopeMonth {
		return s.Value
	}
	return "All entries"
}
