package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/commands/options"
	"tableflip.dev/flow/pkg/runner/get"
	"tableflip.dev/flow/pkg/timeutil"
)

func addGet(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	var (
		at      string
		last    string
		content bool
	)

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"ls", "list"},
		Short:   "List the entries of a day, a month or the whole diary",
		Example: `
flow get
flow get --on 2024-1-1 --at 09:00
flow get --month 2024-01 --content
flow get --all --json
flow get --last 2w
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			scope, err := so.Scope(now, false)
			if err != nil {
				return output.HandleError(err)
			}
			var window timeutil.Window
			if last != "" {
				if window, err = timeutil.ParseWindow(last); err != nil {
					return output.HandleError(err)
				}
			}
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			g := get.Get{
				Scope:   scope,
				Service: svc,
				Out:     cmd.OutOrStdout(),
				Content: content,
				Time:    at,
			}
			if last != "" {
				g.Since = window.Since(now)
				g.Label = window.String()
			}
			if output.JSON {
				entries, err := g.Entries(cmd.Context())
				if err != nil {
					return output.HandleError(err)
				}
				return output.Print(cmd.OutOrStdout(), entries)
			}
			return output.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddScopeArgs(cmd, so)
	cmd.Flags().StringVar(&at, "at", "", "Show the single entry at this time (needs a day).")
	cmd.Flags().StringVar(&last, "last", "", "Show entries of a recent window instead, for example 3d, 2w or 1mo.")
	cmd.Flags().BoolVarP(&content, "content", "c", false, "Print entry content.")
	topLevel.AddCommand(cmd)
}
