package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/support"
)

const platformTimeout = 30 * time.Second

func newPlatformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the detected platform and whether it is supported",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatform(cmd)
		},
	}
}

func runPlatform(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), platformTimeout)
	defer cancel()

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OS:           %s\n", info.OS)
	fmt.Fprintf(out, "Architecture: %s (%s)\n", info.Arch, info.ArchRaw)
	if distro := info.GetDistro(); distro != nil {
		fmt.Fprintf(out, "Distribution: %s %s\n", distro.ID, distro.Version)
		fmt.Fprintf(out, "Family:       %s\n", distro.Family)
		fmt.Fprintf(out, "Release key:  %s\n", distro.Codename)
	}

	// The identity above still prints when the gate rejects, so the
	// error names a platform the user has already seen.
	if err := support.Default().Check(info); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "✓ Platform is supported")
	return nil
}
