// Package platform identifies the host that dockstrap is about to
// provision: OS, CPU architecture, and Linux distribution identity
// including the release codename that repository URLs are keyed by.
//
// Detection uses gopsutil for distribution identification and reads
// os-release directly for the codename, which gopsutil does not expose.
// Architecture is advisory: unmapped machine strings normalize to
// "unknown" instead of failing, because the architecture only feeds
// download URL construction and never gates the run.
package platform

import (
	"context"
	"fmt"
)

// Package-manager family constants.
// Hosts are grouped by how their packages are managed, not by lineage:
// everything apt-based is debian, everything dnf/yum-based is rhel.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Raspbian, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky, AlmaLinux, Fedora
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Normalized architecture constants.
const (
	ArchAMD64   = "amd64"
	ArchARM64   = "arm64"
	ArchARMv7   = "armv7"
	ArchUnknown = "unknown"
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // normalized ("amd64", "arm64", "armv7", "unknown")
	ArchRaw  string // raw machine string (e.g., "x86_64", "aarch64")
	DistroID string // distro ID (Linux only, e.g., "ubuntu", "rocky")
	Family   string // package-manager family ("debian", "rhel", "unknown")
	Version  string // distro version (Linux only, e.g., "22.04", "9.3")
	Codename string // release key: codename for debian family ("jammy"), major version for rhel family ("9")
}

// Distro contains Linux distribution information.
// This is nil on non-Linux platforms.
type Distro struct {
	ID       string // distro ID (e.g., "ubuntu")
	Family   string // package-manager family (e.g., "debian")
	Version  string // version (e.g., "22.04")
	Codename string // release key (e.g., "jammy")
}

// GetDistro returns distro information if this is a Linux platform.
// Returns nil for non-Linux platforms or if distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.DistroID == "" {
		return nil
	}
	return &Distro{
		ID:       i.DistroID,
		Family:   i.Family,
		Version:  i.Version,
		Codename: i.Codename,
	}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == ArchAMD64
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == ArchARM64
}

// IsARMv7 returns true if the architecture is 32-bit ARM.
func (i *Info) IsARMv7() bool {
	return i.Arch == ArchARMv7
}

// IsDebianFamily returns true if the host installs packages with apt.
func (i *Info) IsDebianFamily() bool {
	return i.OS == "linux" && i.Family == FamilyDebian
}

// IsRHELFamily returns true if the host installs packages with dnf or yum.
func (i *Info) IsRHELFamily() bool {
	return i.OS == "linux" && i.Family == FamilyRHEL
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// DetectionError indicates the host's identity could not be established:
// no os-release-equivalent source and no codename utility were usable.
type DetectionError struct {
	Op    string // which identification step failed
	Cause error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("platform detection failed: %s: %v", e.Op, e.Cause)
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}
