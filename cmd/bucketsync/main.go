package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nrollins/bucketsync/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "bucketsync",
		Short: "Keep a local directory and an S3 bucket in sync",
		Long: `bucketsync mirrors a local directory and an S3 bucket in either
direction. Push makes the bucket match the local tree, pull makes the
local tree match the bucket. Safe mode (the default) renames
conflicting or stale files aside instead of overwriting or deleting
them.`,
		Version:       cli.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.NewPushCommand())
	rootCmd.AddCommand(cli.NewPullCommand())
	rootCmd.AddCommand(cli.NewStatusCommand())
	rootCmd.AddCommand(cli.NewUnlockCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.ExecuteContext(ctx)
}
