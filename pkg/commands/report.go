package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/printers"
)

func addStats(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the diary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), stats)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Stats(stats)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addCalendar(topLevel *cobra.Command) {
	var month string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month with the days that hold entries",
		Example: `
flow calendar
flow calendar --month 2024-02
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if month == "" {
				month = now.Format(entry.LayoutMonth)
			}
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			days, err := svc.DatesWithEntries(cmd.Context(), month)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), days)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			return output.HandleError(pp.Calendar(month, days, now))
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show as YYYY-MM, defaults to this month.")
	topLevel.AddCommand(cmd)
}
