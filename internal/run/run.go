// Package run executes the external processes a provisioning run is
// made of: package-manager transactions, repository tooling, and the
// runtime probes used for verification.
//
// Every invocation is a blocking call returning a structured Result
// (exit status plus captured output), never a bare "did it crash"
// boolean, so callers can decide how severe a failure is. Commands
// that need root are escalated through sudo when the process itself
// does not have it; credential prompting is sudo's business, not ours.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// detailLimit caps how much captured output a diagnostic carries.
// Package managers are talkative; the useful part is at the end.
const detailLimit = 2048

// Command describes one external process invocation.
type Command struct {
	Name  string
	Args  []string
	Env   []string // KEY=value pairs appended to the inherited environment
	Stdin []byte   // fed to the child's standard input when non-empty
	Sudo  bool     // escalate through sudo when not already root
}

// String renders the command roughly as a shell would show it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Args)+1)
	parts = append(parts, c.Env...)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Result captures the outcome of one external process invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true when the process exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Detail returns a short diagnostic from the captured output: stderr
// when present, stdout otherwise, truncated to the trailing portion.
func (r *Result) Detail() string {
	detail := strings.TrimSpace(r.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(r.Stdout)
	}
	if len(detail) > detailLimit {
		detail = "..." + detail[len(detail)-detailLimit:]
	}
	return detail
}

// Runner executes commands on behalf of the pipeline.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// HostRunner implements Runner by executing processes on the host.
type HostRunner struct {
	// Stdout and Stderr, when set, additionally receive the child's
	// output as it is produced. Output is always captured into the
	// Result regardless.
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner that executes on the host.
func NewRunner() *HostRunner {
	return &HostRunner{}
}

// Run executes the command and blocks until it exits. A non-zero exit
// is reported through the Result, not as an error; the error return is
// reserved for failures to run the process at all (missing binary,
// cancelled context).
func (h *HostRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	name, args := commandLine(cmd, os.Geteuid())

	c := exec.CommandContext(ctx, name, args...)
	if name != "sudo" && len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if len(cmd.Stdin) > 0 {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if h.Stdout != nil {
		c.Stdout = io.MultiWriter(&stdout, h.Stdout)
	}
	if h.Stderr != nil {
		c.Stderr = io.MultiWriter(&stderr, h.Stderr)
	}

	err := c.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run %s: %w", cmd.Name, ctx.Err())
		}
		return nil, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return result, nil
}

// commandLine resolves the final argv. Commands that need root are
// prefixed with sudo when the process lacks it; environment pairs ride
// sudo's argv as VAR=value assignments since sudo scrubs the inherited
// environment.
func commandLine(cmd Command, euid int) (string, []string) {
	if !cmd.Sudo || euid == 0 {
		return cmd.Name, cmd.Args
	}

	args := make([]string, 0, len(cmd.Env)+len(cmd.Args)+1)
	args = append(args, cmd.Env...)
	args = append(args, cmd.Name)
	args = append(args, cmd.Args...)
	return "sudo", args
}

// TestRunner is a scripted Runner for tests. It records every command
// and delegates results to Handler; a nil Handler succeeds with empty
// output.
type TestRunner struct {
	Handler func(cmd Command) (*Result, error)
	Calls   []Command
}

// Run records the command and returns the scripted result.
func (t *TestRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	t.Calls = append(t.Calls, cmd)
	if t.Handler == nil {
		return &Result{}, nil
	}
	return t.Handler(cmd)
}
