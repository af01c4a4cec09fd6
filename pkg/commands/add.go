package commands

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/commands/options"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	eo := &options.EntryOptions{}
	oo := &options.OnOptions{}
	var content string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Write a diary entry",
		Example: `
flow add --title "Morning walk" --mood happy --tags "health, outside" the river was frozen
flow add --title "Late thoughts" --on yesterday --at 23:10 < note.txt
flow add --title "Summit" --image peak.jpg --image view.png made it up
`,
		Args: func(cmd *cobra.Command, args []string) error {
			content = strings.Join(args, " ")
			if content == "" {
				b, err := readPiped(cmd)
				if err != nil {
					return err
				}
				content = strings.TrimSpace(string(b))
			}
			if content == "" {
				return errors.New("requires entry content")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			media, err := eo.MediaList()
			if err != nil {
				return output.HandleError(err)
			}
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			date, err := oo.GetOn(time.Now())
			if err != nil {
				return output.HandleError(err)
			}
			a := add.Add{
				Entry: entry.Entry{
					Date:    date,
					Time:    eo.Time,
					Title:   eo.Title,
					Content: content,
					Mood:    eo.Mood,
					Tags:    eo.TagList(),
					Media:   media,
				},
				Service: svc,
				Out:     cmd.OutOrStdout(),
				JSON:    output.JSON,
			}
			saved, err := a.Do(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), saved)
			}
			return nil
		},
	}

	options.AddEntryArgs(cmd, eo)
	options.AddOnArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}

// readPiped returns stdin when it is not a terminal.
func readPiped(cmd *cobra.Command) ([]byte, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return nil, nil
		}
	}
	return io.ReadAll(in)
}
