package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at release time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dockstrap %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			return nil
		},
	}
}
