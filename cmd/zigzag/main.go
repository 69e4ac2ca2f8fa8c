package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/internal/cli"
	zerrors "github.com/matzehuels/zigzag/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}

func run(ctx context.Context, args []string) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SilenceErrors = true

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}
	return root.ExecuteContext(ctx)
}

// exitCode is 130 for an interrupt, 2 for rejected input and 1 for any
// other failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch zerrors.GetCode(err) {
	case zerrors.ErrCodeInvalidInput, zerrors.ErrCodeInvalidParams, zerrors.ErrCodeInvalidReplicaID,
		zerrors.ErrCodeInvalidConfig, zerrors.ErrCodeInvalidPath, zerrors.ErrCodeInvalidNode:
		return 2
	}
	return 1
}
