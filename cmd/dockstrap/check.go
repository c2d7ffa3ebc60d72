package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockstrap/dockstrap/internal/run"
	"github.com/dockstrap/dockstrap/internal/verify"
)

// checkTimeout covers an image pull on a cold daemon.
const checkTimeout = 2 * time.Minute

func newCheckCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the installed Docker Engine works",
		Long: `Check runs the same probes provision ends with: a trivial container
workload under sudo and a version query against the client binary.
It exits non-zero when either probe fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(root)
		},
	}
}

func runCheck(root *rootFlags) error {
	log, err := newLogger(root)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	report, err := verify.NewVerifier(run.NewRunner(), log).Verify(ctx)
	if err != nil {
		return err
	}

	fmt.Println("✓ Smoke test passed")
	fmt.Printf("✓ Docker Engine %s is working\n", report.Version)
	return nil
}
