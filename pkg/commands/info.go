package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and where entries are stored.",
		Example: `
flow info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context(), false)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			svc, err := e.Manager.Service()
			if err != nil {
				return output.HandleError(err)
			}
			s := info.Info{
				Config:  e.Config,
				Service: svc,
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
