// Package verify checks that a freshly provisioned runtime actually
// works. Package installation reporting success only proves files were
// placed on disk; these probes prove the engine runs a workload and
// answers for itself, which is the success criterion users care about.
package verify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dockstrap/dockstrap/internal/logging"
	"github.com/dockstrap/dockstrap/internal/run"
)

const (
	dockerBin  = "docker"
	smokeImage = "hello-world"

	// Probe names as they appear in diagnostics.
	ProbeSmoke   = "smoke test"
	ProbeVersion = "version probe"
)

var versionRegex = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Report carries the outcome of both post-install probes.
type Report struct {
	// RuntimeOK is true when a trivial workload ran to completion
	// under the engine.
	RuntimeOK bool

	// Version is the version string the installed binary reported,
	// empty when the probe failed.
	Version string
}

// VerificationError reports a failed probe. It is fatal to the run
// even when installation itself succeeded: an engine that cannot run a
// workload is not a successful install.
type VerificationError struct {
	Probe  string
	Detail string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("post-install verification failed at %s: %s", e.Probe, e.Detail)
}

// Verifier runs the post-install probes through the host runner.
type Verifier struct {
	runner run.Runner
	logger *logging.Logger
}

// NewVerifier creates a Verifier.
func NewVerifier(runner run.Runner, logger *logging.Logger) *Verifier {
	return &Verifier{
		runner: runner,
		logger: logger.WithStage("verify"),
	}
}

// Verify runs two independent probes: a trivial containerized workload
// checked by exit status, and a query of the binary's reported
// version. Both always run; the first failure is returned after both
// have been given their chance, so the Report reflects everything that
// did work.
func (v *Verifier) Verify(ctx context.Context) (*Report, error) {
	report := &Report{}

	smokeErr := v.smokeTest(ctx)
	if smokeErr == nil {
		report.RuntimeOK = true
		v.logger.Info("smoke test passed")
	}

	version, versionErr := v.versionProbe(ctx)
	if versionErr == nil {
		report.Version = version
		v.logger.Info("engine reports version " + version)
	}

	if smokeErr != nil {
		return report, smokeErr
	}
	if versionErr != nil {
		return report, versionErr
	}
	return report, nil
}

// smokeTest runs a throwaway container and checks its exit status. The
// image is tiny and the container removes itself, so the probe leaves
// nothing behind beyond the cached image.
func (v *Verifier) smokeTest(ctx context.Context) error {
	res, err := v.runner.Run(ctx, run.Command{
		Name: dockerBin,
		Args: []string{"run", "--rm", smokeImage},
		Sudo: true,
	})
	if err != nil {
		return &VerificationError{Probe: ProbeSmoke, Detail: err.Error()}
	}
	if !res.Success() {
		return &VerificationError{Probe: ProbeSmoke, Detail: res.Detail()}
	}
	return nil
}

// versionProbe asks the installed binary for its version.
func (v *Verifier) versionProbe(ctx context.Context) (string, error) {
	res, err := v.runner.Run(ctx, run.Command{
		Name: dockerBin,
		Args: []string{"--version"},
	})
	if err != nil {
		return "", &VerificationError{Probe: ProbeVersion, Detail: err.Error()}
	}
	if !res.Success() {
		return "", &VerificationError{Probe: ProbeVersion, Detail: res.Detail()}
	}

	version, err := ExtractVersion(res.Stdout)
	if err != nil {
		return "", &VerificationError{
			Probe:  ProbeVersion,
			Detail: fmt.Sprintf("unparseable version output %q", strings.TrimSpace(res.Stdout)),
		}
	}
	return version, nil
}

// ExtractVersion extracts a semantic version from command output.
func ExtractVersion(output string) (string, error) {
	match := versionRegex.FindString(output)
	if match == "" {
		return "", fmt.Errorf("no version found in output")
	}
	return match, nil
}
