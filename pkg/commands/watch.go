package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print diary changes as they happen, including writes from other processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := open(ctx, true)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			w := watch.Watch{
				Manager: e.Manager,
				Out:     cmd.OutOrStdout(),
				JSON:    output.JSON,
			}
			return output.HandleError(w.Do(ctx))
		},
	}

	topLevel.AddCommand(cmd)
}
