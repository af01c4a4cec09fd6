package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/commands/options"
	"tableflip.dev/flow/pkg/export"
)

func addExport(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	var (
		format string
		target string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as JSON or plain text",
		Long: `Export a day, a month or the whole diary. A full JSON export is a backup
document holding the export date, the user and every entry. The file is
named after the scope (diary-entries-2024-01-01.txt, diary-export-2024-01-31.json)
and written to the current directory unless --output names a directory, a
file, or "-" for stdout.`,
		Example: `
flow export --all
flow export --month 2024-01 --format txt --output ~/Documents
flow export --on today --format txt --output -
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, err := so.Scope(time.Now(), true)
			if err != nil {
				return output.HandleError(err)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return output.HandleError(err)
			}
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			data, name, err := svc.Export(cmd.Context(), scope, f)
			if err != nil {
				return output.HandleError(err)
			}
			if target == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			path := name
			if target != "" {
				path = target
				if fi, err := os.Stat(target); err == nil && fi.IsDir() {
					path = filepath.Join(target, name)
				}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), map[string]any{"file": path, "bytes": len(data)})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
			return nil
		},
	}

	options.AddScopeArgs(cmd, so)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json or txt.")
	cmd.Flags().StringVarP(&target, "output", "o", "", `File or directory to write, "-" for stdout.`)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(export.JSON), string(export.Text)}, cobra.ShellCompDirectiveNoFileComp
	})
	topLevel.AddCommand(cmd)
}
