package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// osReleasePath is where Linux hosts publish their identity.
const osReleasePath = "/etc/os-release"

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	// OSReleasePath overrides the os-release location, for tests.
	OSReleasePath string
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{OSReleasePath: osReleasePath}
}

// Detect performs platform detection and returns platform information.
// It uses gopsutil for the distribution identity and the raw machine
// architecture string, and reads os-release for the release codename.
//
// Architecture normalization never fails: unmapped machine strings
// yield ArchUnknown and detection continues. Detection fails with
// DetectionError only when no identification facility works at all,
// or when a debian-family host offers neither an os-release codename
// nor a usable lsb_release utility.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{OS: runtime.GOOS}

	raw, err := host.KernelArch()
	if err != nil || raw == "" {
		raw = runtime.GOARCH
	}
	info.ArchRaw = strings.TrimSpace(raw)
	info.Arch = normalizeArch(info.ArchRaw)

	// Distribution identity is a Linux concept. On other systems the
	// compatibility gate rejects the bare OS value.
	if info.OS != "linux" {
		return info, nil
	}

	osr, osrErr := parseOSRelease(d.osReleasePath())

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		if osrErr != nil {
			return nil, &DetectionError{Op: "read distribution identity", Cause: errors.Join(err, osrErr)}
		}
		distro = osr["ID"]
		family = osr["ID_LIKE"]
		version = osr["VERSION_ID"]
	}

	info.DistroID = normalizePlatform(distro)
	info.Version = normalizePlatform(version)
	info.Family = mapFamily(distro)
	if info.Family == FamilyUnknown {
		// ID_LIKE may list several ancestors ("rhel fedora").
		for _, token := range strings.Fields(family) {
			if mapped := mapFamily(token); mapped != FamilyUnknown {
				info.Family = mapped
				break
			}
		}
	}

	switch info.Family {
	case FamilyDebian:
		codename, err := debianCodename(ctx, osr, osrErr)
		if err != nil {
			return nil, err
		}
		info.Codename = codename
	case FamilyRHEL:
		// RHEL-family repositories are keyed by major version, not by
		// a marketing codename.
		info.Codename = majorVersion(info.Version)
	}

	return info, nil
}

func (d *RealDetector) osReleasePath() string {
	if d.OSReleasePath != "" {
		return d.OSReleasePath
	}
	return osReleasePath
}

// debianCodename resolves the release codename for apt-based hosts:
// os-release VERSION_CODENAME, then UBUNTU_CODENAME, then lsb_release.
// It fails with DetectionError only when neither facility is usable.
func debianCodename(ctx context.Context, osr map[string]string, osrErr error) (string, error) {
	if osrErr == nil {
		if c := osr["VERSION_CODENAME"]; c != "" {
			return normalizePlatform(c), nil
		}
		if c := osr["UBUNTU_CODENAME"]; c != "" {
			return normalizePlatform(c), nil
		}
	}

	codename, lsbErr := lsbCodename(ctx)
	if lsbErr == nil && codename != "" {
		return normalizePlatform(codename), nil
	}

	if osrErr != nil {
		return "", &DetectionError{Op: "resolve release codename", Cause: errors.Join(osrErr, lsbErr)}
	}

	// os-release exists but names no codename (e.g. an unreleased
	// snapshot). The compatibility gate rejects the empty value.
	return "", nil
}

// parseOSRelease reads an os-release file into a key/value map.
// Values may be quoted; comments and malformed lines are skipped.
func parseOSRelease(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		fields[strings.TrimSpace(key)] = value
	}
	return fields, nil
}

// lsbCodename queries lsb_release for the release codename.
func lsbCodename(ctx context.Context) (string, error) {
	path, err := exec.LookPath("lsb_release")
	if err != nil {
		return "", fmt.Errorf("lsb_release not available: %w", err)
	}

	out, err := exec.CommandContext(ctx, path, "-cs").Output()
	if err != nil {
		return "", fmt.Errorf("lsb_release -cs: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
