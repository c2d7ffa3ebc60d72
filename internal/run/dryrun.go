package run

import (
	"context"
	"fmt"
	"io"
)

// DryRunner records commands without executing them and reports
// success for each, so a dry run walks exactly the steps a real run
// would without touching the host.
type DryRunner struct {
	// Out, when set, receives one "would run:" line per command.
	Out      io.Writer
	Commands []Command
}

// Run records the command and pretends it succeeded.
func (d *DryRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	d.Commands = append(d.Commands, cmd)
	if d.Out != nil {
		fmt.Fprintf(d.Out, "would run: %s\n", cmd)
	}
	return &Result{}, nil
}
