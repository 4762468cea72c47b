package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seatctl",
		Short:         "Seating planner tools: geometry previews, offline checks, dev tokens, audit consumer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newGeometryCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newConsumeCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
