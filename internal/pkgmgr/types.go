// Package pkgmgr abstracts the host's native package manager behind a
// small capability set: refresh the index, install packages, remove
// packages that may not exist, and register a signed third-party
// repository.
//
// There is one adapter per platform family (apt for debian, dnf for
// rhel), selected by ForFamily. Adding a platform means adding an
// adapter, not editing conditionals scattered across pipeline steps.
// The adapters never lock anything themselves: concurrent invocations
// are left to the package manager's own lock.
package pkgmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/run"
)

// Manager is the capability set the pipeline provisions through.
type Manager interface {
	// Name identifies the underlying tool ("apt", "dnf").
	Name() string

	// RefreshIndex updates the package index so newly registered
	// repositories become visible.
	RefreshIndex(ctx context.Context) error

	// InstallPackages installs the named packages. Any non-zero outcome
	// is a *PackageInstallError.
	InstallPackages(ctx context.Context, names []string) error

	// RemovePackagesIfPresent removes whichever of the named packages
	// are installed. Absence is the common case on a clean host and is
	// never an error; only genuine execution failures are reported.
	RemovePackagesIfPresent(ctx context.Context, names []string) error

	// AddSignedRepository writes the manager-native repository
	// descriptor for repo, referencing installed trust material by
	// path. Re-running overwrites the descriptor rather than appending
	// a duplicate entry.
	AddSignedRepository(ctx context.Context, repo RepoSpec) error
}

// RepoSpec describes a third-party package source bound to previously
// installed trust material.
type RepoSpec struct {
	Name     string // repository identity, used for descriptor filenames ("docker")
	BaseURL  string // family-specific repository base URL
	Codename string // apt suite codename; unused by rhel adapters
	Channel  string // release channel ("stable", "test")
	Arch     string // normalized architecture tag; empty means let the manager decide
	KeyPath  string // absolute path of the installed trust material
}

// ForFamily selects the adapter for a detected platform family.
func ForFamily(family string, runner run.Runner) (Manager, error) {
	switch family {
	case platform.FamilyDebian:
		return NewAptManager(runner), nil
	case platform.FamilyRHEL:
		return NewDnfManager(runner), nil
	default:
		return nil, fmt.Errorf("no package manager adapter for family %q", family)
	}
}

// PackageInstallError reports a failed package transaction together
// with the manager's diagnostic output.
type PackageInstallError struct {
	Packages   []string
	ExitDetail string
}

func (e *PackageInstallError) Error() string {
	msg := fmt.Sprintf("package installation failed for %s", strings.Join(e.Packages, ", "))
	if e.ExitDetail != "" {
		msg += ": " + e.ExitDetail
	}
	return msg
}
