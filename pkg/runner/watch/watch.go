// Package watch follows the diary and prints every change as it lands.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/cache"
	"tableflip.dev/flow/pkg/export"
)

// Watch prints cache changes of the current session until ctx is done.
// Changes made by other processes reach it through the store
// subscription the session holds.
type Watch struct {
	Manager *app.Manager
	Out     io.Writer
	JSON    bool
}

type event struct {
	Action string `json:"action"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Title  string `json:"title,omitempty"`
}

func (w *Watch) Do(ctx context.Context) error {
	if w.Manager == nil {
		return errors.New("can not watch, no session manager")
	}
	out := w.Out
	if out == nil {
		out = color.Output
	}

	sess, err := w.Manager.Session()
	if err != nil {
		return err
	}
	events := sess.Cache.Events()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-events:
			if !ok {
				// The session closed, follow the next one if any.
				sess, err = w.Manager.Session()
				if errors.Is(err, app.ErrNoSession) {
					return nil
				}
				if err != nil {
					return err
				}
				events = sess.Cache.Events()
				continue
			}
			if err := w.print(out, ch); err != nil {
				return err
			}
		}
	}
}

func (w *Watch) print(out io.Writer, ch cache.Change) error {
	ev := event{Action: string(ch.Action), Date: ch.Date, Time: ch.Time}
	if ch.Entry != nil {
		ev.Title = ch.Entry.Title
	}
	if w.JSON {
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	var c *color.Color
	switch ch.Action {
	case cache.ChangeCreate:
		c = color.New(color.FgGreen)
	case cache.ChangeDelete:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgYellow)
	}
	_, _ = c.Fprintf(out, "%-6s ", ev.Action)
	_, err := fmt.Fprintf(out, "%s %s  %s\n", export.LongDate(ev.Date), export.ClockTime(ev.Time), ev.Title)
	return err
}
