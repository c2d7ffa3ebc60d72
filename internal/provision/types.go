package provision

import (
	"github.com/dockstrap/dockstrap/internal/pipeline"
	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/shell"
	"github.com/dockstrap/dockstrap/internal/verify"
)

// Config carries the resolved inputs of one provisioning run. Flag,
// profile, and default resolution happens before a Config is built;
// the service itself never consults the environment.
type Config struct {
	// Channel selects the release channel packages install from.
	// Empty means stable.
	Channel string

	// ExtraPackages are installed in the same transaction as the
	// engine packages.
	ExtraPackages []string

	// DockerGroup adds the invoking user to the docker group after
	// the engine is installed.
	DockerGroup bool

	// ShellAliases writes the managed alias block to the user's rc
	// file once verification has passed.
	ShellAliases bool

	// DryRun records every command instead of executing it and skips
	// verification. Nothing on the host changes.
	DryRun bool

	// KeyURL overrides the signing key source.
	KeyURL string

	// Fingerprint overrides the pinned signing key fingerprint.
	Fingerprint string

	// HomeDir overrides home directory resolution for shell setup.
	HomeDir string
}

// Outcome aggregates everything one provisioning run produced. Fields
// stay nil for stages that were never reached.
type Outcome struct {
	// Platform is the detected host identity.
	Platform *platform.Info

	// Report records every pipeline step, including steps skipped
	// after an abort.
	Report *pipeline.Report

	// Verify carries the post-install probe results. Nil on dry runs.
	Verify *verify.Report

	// Shell describes the applied alias block, when shell setup ran.
	Shell *shell.SetupResult

	// ShellErr records a failed shell setup. Alias setup is cosmetic
	// and never fails the run.
	ShellErr error
}
