package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/flow/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
	global = &globalOptions{}
)

type globalOptions struct {
	ConfigFile string
	User       string
}

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "flow",
		Short: base.Wrap80("Your Digital Flow: a diary on the command line."),
		Long: base.Wrap80("Write, search and export diary entries keyed by date and time. " +
			"Entries live in a local document store (diskv or sqlite) configured by ~/.flow.yaml " +
			"or FLOW_* environment variables."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&global.ConfigFile, "config", "",
		"Config file (default is .flow.yaml in $FLOW_CONFIG_PATH, ./ or $HOME).")
	cmd.PersistentFlags().StringVar(&global.User, "user", "",
		"Diary user, overrides the configured user.")
	options.AddOutputArg(cmd, output)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addAdd(topLevel)
	addGet(topLevel)
	addEdit(topLevel)
	addMove(topLevel)
	addRemove(topLevel)
	addSearch(topLevel)
	addTags(topLevel)
	addExport(topLevel)
	addPrefs(topLevel)
	addStats(topLevel)
	addCalendar(topLevel)
	addWatch(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addDB(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
