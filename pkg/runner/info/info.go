// Package info reports where flow keeps its configuration and data.
package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/config"
)

type Info struct {
	Config  *config.Config
	Service *app.Service
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("FLOW_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "FLOW_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "FLOW_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		return fmt.Errorf("no configuration loaded")
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Backend"), n.Config.Backend)
	tbl.AddRow(bold.Sprint("Path"), n.Config.Path)
	tbl.AddRow(bold.Sprint("User"), n.Config.User)
	tbl.AddRow(bold.Sprint("Retry"), fmt.Sprintf("%d attempts, %s delay", n.Config.Retry.Attempts, n.Config.Retry.Delay))

	if n.Service != nil {
		stats, err := n.Service.Stats(ctx)
		if err != nil {
			return err
		}
		tbl.AddRow(bold.Sprint("Entries"), fmt.Sprintf("%d over %d days", stats.Entries, stats.Days))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}
