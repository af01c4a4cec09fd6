// Command flow is the installable entry point:
//
//	go install tableflip.dev/flow/cmd/flow@latest
package main

import (
	"context"
	"os"

	"tableflip.dev/flow/pkg/commands"
)

func main() {
	if err := commands.New().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
