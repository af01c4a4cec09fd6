package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/commands/options"
	"tableflip.dev/flow/pkg/printers"
)

func addEdit(topLevel *cobra.Command) {
	eo := &options.EntryOptions{}
	oo := &options.OnOptions{}
	var content string

	cmd := &cobra.Command{
		Use:   "edit <time>",
		Short: "Change an entry; only the given fields are replaced",
		Example: `
flow edit 09:00 --title "Morning run"
flow edit 21:15 --on yesterday --tags "reading" --content "Finished the book."
flow edit 09:00 --at 08:45
flow edit 09:00 --image sunrise.jpg
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := oo.Day(time.Now())
			if err != nil {
				return output.HandleError(err)
			}

			req := app.EditRequest{Time: eo.Time}
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &eo.Title
			}
			if flags.Changed("content") {
				req.Content = &content
			}
			if flags.Changed("mood") {
				req.Mood = &eo.Mood
			}
			if flags.Changed("tags") {
				tags := eo.TagList()
				req.Tags = &tags
			}
			if flags.Changed("image") {
				media, err := eo.MediaList()
				if err != nil {
					return output.HandleError(err)
				}
				req.Media = &media
			}

			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			edited, err := svc.Edit(cmd.Context(), date, args[0], req)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), edited)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Entry(edited)
			return nil
		},
	}

	options.AddEntryArgs(cmd, eo)
	options.AddOnArgs(cmd, oo)
	cmd.Flags().StringVar(&content, "content", "", "Replace the entry content.")
	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command) {
	oo := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "move <from> <to>",
		Aliases: []string{"mv"},
		Short:   "Move an entry to another time of the same day",
		Example: `
flow move 09:00 09:30
flow move 23:50 00:10 --on 2024-1-1
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := oo.Day(time.Now())
			if err != nil {
				return output.HandleError(err)
			}

			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			moved, err := svc.Move(cmd.Context(), date, args[0], args[1])
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), moved)
			}
			day, err := svc.Day(cmd.Context(), date)
			if err != nil {
				return output.HandleError(err)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Day(date, day...)
			return nil
		},
	}

	options.AddOnArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command) {
	oo := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "rm <time>",
		Aliases: []string{"delete"},
		Short:   "Delete an entry",
		Example: `
flow rm 09:00
flow rm 21:15 --on yesterday
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := oo.Day(time.Now())
			if err != nil {
				return output.HandleError(err)
			}

			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			if err := svc.Delete(cmd.Context(), date, args[0]); err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), map[string]any{"deleted": true, "date": date, "time": args[0]})
			}
			day, err := svc.Day(cmd.Context(), date)
			if err != nil {
				return output.HandleError(err)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Day(date, day...)
			return nil
		},
	}

	options.AddOnArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
