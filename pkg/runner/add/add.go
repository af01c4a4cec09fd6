// Package add writes a diary entry from the command line.
package add

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/printers"
)

type Add struct {
	Entry   entry.Entry
	Service *app.Service
	Out     io.Writer
	// JSON prints the saved entry instead of the day timeline.
	JSON bool
}

func (n *Add) Do(ctx context.Context) (entry.Entry, error) {
	if n.Service == nil {
		return entry.Entry{}, errors.New("can not add, no service")
	}

	saved, err := n.Service.Save(ctx, n.Entry)
	if err != nil {
		return entry.Entry{}, err
	}
	if n.JSON {
		return saved, nil
	}

	day, err := n.Service.Day(ctx, saved.Date)
	if err != nil {
		return saved, err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Day(saved.Date, day...)
	return saved, nil
}
