package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/commands/options"
	"tableflip.dev/flow/pkg/printers"
	"tableflip.dev/flow/pkg/search"
)

func addSearch(topLevel *cobra.Command) {
	so := &options.SearchOptions{}

	cmd := &cobra.Command{
		Use:     "search [keyword]",
		Aliases: []string{"find"},
		Short:   "Filter entries by keyword, mood and tags",
		Long: `Search every entry. The keyword matches title, content and tags ignoring
case, the mood must match exactly and an entry matches the tag filter when it
carries any of the tags. With no filters every entry is listed. Results are
newest first unless --newest=false.`,
		Example: `
flow search river
flow search --mood happy --tags "travel, family" --newest=false
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			q := search.Query{
				Keyword:        strings.Join(args, " "),
				Mood:           so.Mood,
				Tags:           options.SplitTags(so.Tags),
				SortByDateDesc: so.Newest,
			}
			results, err := svc.Search(cmd.Context(), q)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), results)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.TitleWithCount("Results", len(results))
			pp.Timeline(results...)
			return nil
		},
	}

	options.AddSearchArgs(cmd, so)
	topLevel.AddCommand(cmd)
}

func addTags(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tags in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := service(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			defer done()

			counts, err := svc.TagCounts(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(cmd.OutOrStdout(), counts)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Tags(counts)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
