package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dockstrap/dockstrap/internal/run"
)

const dockerVersionOutput = "Docker version 27.1.1, build 6312585\n"

// scriptedRunner answers the smoke test and version probe separately.
func scriptedRunner(smoke, version *run.Result, fail error) *run.TestRunner {
	return &run.TestRunner{
		Handler: func(cmd run.Command) (*run.Result, error) {
			if fail != nil {
				return nil, fail
			}
			if len(cmd.Args) > 0 && cmd.Args[0] == "run" {
				return smoke, nil
			}
			return version, nil
		},
	}
}

func TestVerifier_Verify(t *testing.T) {
	runner := scriptedRunner(
		&run.Result{ExitCode: 0, Stdout: "Hello from Docker!"},
		&run.Result{ExitCode: 0, Stdout: dockerVersionOutput},
		nil,
	)

	v := NewVerifier(runner, nil)
	report, err := v.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if !report.RuntimeOK {
		t.Error("RuntimeOK should be true")
	}
	if report.Version != "27.1.1" {
		t.Errorf("Version = %q, want %q", report.Version, "27.1.1")
	}

	if len(runner.Calls) != 2 {
		t.Fatalf("expected 2 probes, got %d commands", len(runner.Calls))
	}
	smoke := runner.Calls[0]
	if smoke.Name != "docker" || smoke.Args[0] != "run" || !smoke.Sudo {
		t.Errorf("unexpected smoke test command: %s", smoke.String())
	}
	if got := smoke.Args[len(smoke.Args)-1]; got != "hello-world" {
		t.Errorf("smoke test image = %q", got)
	}
	probe := runner.Calls[1]
	if probe.Name != "docker" || probe.Args[0] != "--version" || probe.Sudo {
		t.Errorf("unexpected version probe command: %s", probe.String())
	}
}

func TestVerifier_Verify_SmokeTestFails(t *testing.T) {
	runner := scriptedRunner(
		&run.Result{ExitCode: 125, Stderr: "Cannot connect to the Docker daemon"},
		&run.Result{ExitCode: 0, Stdout: dockerVersionOutput},
		nil,
	)

	v := NewVerifier(runner, nil)
	report, err := v.Verify(context.Background())
	if err == nil {
		t.Fatal("expected error when the smoke test fails")
	}

	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VerificationError, got %T", err)
	}
	if verr.Probe != ProbeSmoke {
		t.Errorf("failing probe = %q, want %q", verr.Probe, ProbeSmoke)
	}
	if !strings.Contains(verr.Detail, "Docker daemon") {
		t.Errorf("detail should carry the engine diagnostic: %q", verr.Detail)
	}

	// The probes are independent: the version probe still ran and its
	// result is still reported.
	if len(runner.Calls) != 2 {
		t.Errorf("expected both probes to run, got %d commands", len(runner.Calls))
	}
	if report.RuntimeOK {
		t.Error("RuntimeOK should be false")
	}
	if report.Version != "27.1.1" {
		t.Errorf("Version = %q, want %q", report.Version, "27.1.1")
	}
}

func TestVerifier_Verify_VersionProbeFails(t *testing.T) {
	runner := scriptedRunner(
		&run.Result{ExitCode: 0},
		&run.Result{ExitCode: 127, Stderr: "docker: command not found"},
		nil,
	)

	v := NewVerifier(runner, nil)
	report, err := v.Verify(context.Background())
	if err == nil {
		t.Fatal("expected error when the version probe fails")
	}

	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VerificationError, got %T", err)
	}
	if verr.Probe != ProbeVersion {
		t.Errorf("failing probe = %q, want %q", verr.Probe, ProbeVersion)
	}
	if !report.RuntimeOK {
		t.Error("RuntimeOK should still be true")
	}
}

func TestVerifier_Verify_UnparseableVersion(t *testing.T) {
	runner := scriptedRunner(
		&run.Result{ExitCode: 0},
		&run.Result{ExitCode: 0, Stdout: "no digits here"},
		nil,
	)

	v := NewVerifier(runner, nil)
	_, err := v.Verify(context.Background())
	if err == nil {
		t.Fatal("expected error for unparseable version output")
	}
	if !strings.Contains(err.Error(), "no digits here") {
		t.Errorf("error should quote the offending output: %v", err)
	}
}

func TestVerifier_Verify_BinaryMissing(t *testing.T) {
	runner := scriptedRunner(nil, nil, errors.New(`start command "docker": executable file not found`))

	v := NewVerifier(runner, nil)
	report, err := v.Verify(context.Background())
	if err == nil {
		t.Fatal("expected error when the binary cannot be executed")
	}
	if report.RuntimeOK || report.Version != "" {
		t.Errorf("report should be empty, got %+v", report)
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "docker_version_line",
			output: dockerVersionOutput,
			want:   "27.1.1",
		},
		{
			name:   "bare_version",
			output: "24.0.7",
			want:   "24.0.7",
		},
		{
			name:   "first_of_several",
			output: "client 25.0.1 server 25.0.2",
			want:   "25.0.1",
		},
		{
			name:    "no_version",
			output:  "command not found",
			wantErr: true,
		},
		{
			name:    "empty",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVersion(tt.output)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerificationError_Error(t *testing.T) {
	err := &VerificationError{Probe: ProbeSmoke, Detail: "exit status 1"}
	want := "post-install verification failed at smoke test: exit status 1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
