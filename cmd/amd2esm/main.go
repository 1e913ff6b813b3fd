// Package main provides the entry point for the amd2esm CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sumatoshi-tech/amd2esm/cmd/amd2esm/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		if errors.Is(err, commands.ErrFilesWouldChange) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(commands.ExitWouldChange)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
