// Package support declares which platforms dockstrap provisions and
// gates every run on that list before any network or package-manager
// call happens.
//
// Matching is exact. Repository URLs are keyed by release codename, so
// an unlisted codename is rejected even when it is a newer point
// release of a supported family: a wrong guess would silently install
// from the wrong channel.
package support

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dockstrap/dockstrap/internal/platform"
)

// Matrix is the set of (family, release) pairs accepted by the gate.
// For the debian family a release is an apt codename ("jammy"); for
// the rhel family it is a major version ("9").
type Matrix struct {
	releases map[string]map[string]struct{}
}

// New builds a matrix from family to release-list pairs.
func New(pairs map[string][]string) *Matrix {
	m := &Matrix{releases: make(map[string]map[string]struct{}, len(pairs))}
	for family, releases := range pairs {
		set := make(map[string]struct{}, len(releases))
		for _, r := range releases {
			set[r] = struct{}{}
		}
		m.releases[family] = set
	}
	return m
}

// Default returns the matrix of platforms the Docker Engine repository
// publishes packages for and that dockstrap has been exercised on.
func Default() *Matrix {
	return New(map[string][]string{
		platform.FamilyDebian: {"bullseye", "bookworm", "trixie", "focal", "jammy", "noble"},
		platform.FamilyRHEL:   {"8", "9"},
	})
}

// Check validates detected platform information against the matrix.
// A nil return is the hard precondition for running any pipeline step.
func (m *Matrix) Check(info *platform.Info) error {
	if !info.IsLinux() {
		return &UnsupportedPlatformError{
			Distro:    info.OS,
			Supported: m.Supported(),
		}
	}

	distro := info.DistroID
	if distro == "" {
		distro = info.Family
	}

	releases, ok := m.releases[info.Family]
	if !ok {
		return &UnsupportedPlatformError{
			Distro:    distro,
			Codename:  info.Codename,
			Supported: m.Supported(),
		}
	}

	if _, ok := releases[info.Codename]; !ok {
		return &UnsupportedPlatformError{
			Distro:    distro,
			Codename:  info.Codename,
			Supported: m.Supported(),
		}
	}

	return nil
}

// Supported returns one human-readable line per family, sorted, for
// gate rejection messages.
func (m *Matrix) Supported() []string {
	families := make([]string, 0, len(m.releases))
	for family := range m.releases {
		families = append(families, family)
	}
	sort.Strings(families)

	out := make([]string, 0, len(families))
	for _, family := range families {
		releases := make([]string, 0, len(m.releases[family]))
		for r := range m.releases[family] {
			releases = append(releases, r)
		}
		sort.Strings(releases)
		out = append(out, fmt.Sprintf("%s: %s", family, strings.Join(releases, ", ")))
	}
	return out
}

// UnsupportedPlatformError reports a gate rejection. It names the
// observed value so a re-run can be diagnosed without re-deriving
// platform state, and enumerates what would have been accepted.
type UnsupportedPlatformError struct {
	Distro    string // observed distro ID, or bare OS for non-Linux hosts
	Codename  string // observed release key, may be empty
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	observed := e.Distro
	if e.Codename != "" {
		observed = fmt.Sprintf("%s %q", e.Distro, e.Codename)
	}
	return fmt.Sprintf("unsupported platform: %s (supported: %s)", observed, strings.Join(e.Supported, "; "))
}
