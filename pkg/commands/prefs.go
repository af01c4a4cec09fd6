package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/app"
)

func addPrefs(topLevel *cobra.Command) {
	var profile bool

	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"preferences"},
		Short:   "Read and change per-user preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVar(&profile, "profile", false, "Operate on the user profile instead of preferences.")

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Show saved preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			values, err := readSettings(cmd.Context(), svc, profile)
			if err != nil {
				return output.HandleError(err)
			}
			if len(args) == 1 {
				v, ok := values[args[0]]
				if !ok {
					return output.HandleError(fmt.Errorf("%s is not set", args[0]))
				}
				values = app.Settings{args[0]: v}
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), values)
			}
			printSettings(cmd, values)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key=value>...",
		Short: "Merge values into the saved preferences",
		Long: `Each value is read as JSON when it parses (true, 3, {"a":1}) and as a
plain string otherwise. An empty value removes the key. Keys not named are
kept.`,
		Example: `
flow prefs set theme=dark reminders=true
flow prefs set --profile displayName="Ada"
flow prefs set theme=
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseSettings(args)
			if err != nil {
				return output.HandleError(err)
			}
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			if profile {
				err = svc.SaveProfile(cmd.Context(), values)
			} else {
				err = svc.SavePreferences(cmd.Context(), values)
			}
			if err != nil {
				return output.HandleError(err)
			}
			saved, err := readSettings(cmd.Context(), svc, profile)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), saved)
			}
			printSettings(cmd, saved)
			return nil
		},
	})

	topLevel.AddCommand(cmd)
}

func readSettings(ctx context.Context, svc *app.Service, profile bool) (app.Settings, error) {
	if profile {
		return svc.Profile(ctx)
	}
	return svc.Preferences(ctx)
}

// parseSettings reads key=value pairs. An empty value maps to nil.
func parseSettings(args []string) (app.Settings, error) {
	out := app.Settings{}
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.Contains(key, "/") {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		if raw == "" {
			out[key] = nil
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}

func printSettings(cmd *cobra.Command, values app.Settings) {
	if len(values) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(cmd.OutOrStdout(), " none\n")
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, k := range keys {
		b, err := json.Marshal(values[k])
		if err != nil {
			b = []byte(fmt.Sprint(values[k]))
		}
		tbl.AddRow(bold.Sprint(k), string(b))
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
}
