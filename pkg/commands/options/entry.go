package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/flow/pkg/entry"
)

// EntryOptions carries the fields of an entry given on the command line.
type EntryOptions struct {
	Title  string
	Mood   string
	Tags   string
	Time   string
	Images []string
}

func AddEntryArgs(cmd *cobra.Command, o *EntryOptions) {
	cmd.Flags().StringVarP(&o.Title, "title", "t", "",
		"Entry title.")
	cmd.Flags().StringVar(&o.Mood, "mood", "",
		"Mood for the entry, example: --mood=happy.")
	cmd.Flags().StringVar(&o.Tags, "tags", "",
		`Comma or space separated tags, example: --tags="work, #travel".`)
	cmd.Flags().StringVar(&o.Time, "at", "",
		`Time of day as HH:MM, defaults to now.`)
	cmd.Flags().StringArrayVar(&o.Images, "image", nil,
		"Attach an image file, repeat for a second one.")
}

// TagList parses the --tags value.
func (o *EntryOptions) TagList() []string {
	return entry.ParseTags(o.Tags)
}

// MediaList reads the --image files.
func (o *EntryOptions) MediaList() ([]entry.Media, error) {
	return entry.MediaFromFiles(o.Images)
}

// SearchOptions are the filters of a search.
type SearchOptions struct {
	Mood   string
	Tags   string
	Newest bool
}

func AddSearchArgs(cmd *cobra.Command, o *SearchOptions) {
	cmd.Flags().StringVar(&o.Mood, "mood", "",
		"Only entries with exactly this mood.")
	cmd.Flags().StringVar(&o.Tags, "tags", "",
		"Only entries carrying any of these tags.")
	cmd.Flags().BoolVar(&o.Newest, "newest", true,
		"Newest entries first; --newest=false keeps diary order.")
}

// SplitTags parses a tag filter.
func SplitTags(s string) []string {
	return entry.ParseTags(s)
}
