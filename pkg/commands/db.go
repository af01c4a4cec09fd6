package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/logging"
	"tableflip.dev/flow/pkg/store"
)

func addDB(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain the storage backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newDBUpgradeCmd())
	cmd.AddCommand(newDBCopyCmd())
	topLevel.AddCommand(cmd)
}

func newDBUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Create or check the sqlite schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return output.HandleError(err)
			}
			log := logging.New(cfg.Log)
			sc := cfg.Store()
			dsn := filepath.Join(sc.Path, store.SQLiteFile)

			db, err := store.OpenDB(store.SQLiteConfig{DSN: dsn, WAL: sc.WAL, Sync: sc.Sync})
			if err != nil {
				return output.HandleError(err)
			}
			defer db.Close()

			before, err := store.UpgradeDB(cmd.Context(), db, log, dsn, store.TargetSchemaVersion)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), map[string]any{
					"db":      dsn,
					"from":    before,
					"version": store.TargetSchemaVersion,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (was %d)\n", dsn, store.TargetSchemaVersion, before)
			return nil
		},
	}
}

func newDBCopyCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "copy --to <backend>",
		Short: "Copy the current user's diary into another backend",
		Long: `Copy every entry, preference and profile value of the current user from the
configured backend into another one at the same path. The target is
replaced in a single atomic write.`,
		Example: `
flow db copy --to sqlite
FLOW_BACKEND=sqlite flow db copy --to diskv
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return output.HandleError(err)
			}
			log := logging.New(cfg.Log)
			from := cfg.Store()
			target := from
			target.Backend = store.Backend(to)
			if target.Backend == from.Backend {
				return output.HandleError(fmt.Errorf("source and target are both %s", to))
			}

			src, err := store.Open(ctx, from, log)
			if err != nil {
				return output.HandleError(err)
			}
			defer src.Close()
			dst, err := store.Open(ctx, target, log)
			if err != nil {
				return output.HandleError(err)
			}
			defer dst.Close()

			path := store.UserPath(cfg.User)
			raw, err := src.Read(ctx, path)
			if err != nil {
				return output.HandleError(err)
			}
			if err := dst.BatchUpdate(ctx, map[string]any{path: raw}); err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), map[string]any{"from": from.Backend, "to": target.Backend, "bytes": len(raw)})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "copied %s from %s to %s (%d bytes)\n", path, from.Backend, target.Backend, len(raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", string(store.BackendSQLite), "Target backend: diskv or sqlite.")
	_ = cmd.RegisterFlagCompletionFunc("to", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(store.BackendDiskv), string(store.BackendSQLite)}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
