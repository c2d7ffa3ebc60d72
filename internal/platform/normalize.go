package platform

import (
	"strings"
)

// familyMap maps distribution IDs and gopsutil family strings to the
// package-manager family that drives adapter selection.
var familyMap = map[string]string{
	"debian":    FamilyDebian,
	"ubuntu":    FamilyDebian,
	"raspbian":  FamilyDebian,
	"linuxmint": FamilyDebian,
	"pop":       FamilyDebian,
	"rhel":      FamilyRHEL,
	"redhat":    FamilyRHEL,
	"centos":    FamilyRHEL,
	"rocky":     FamilyRHEL,
	"almalinux": FamilyRHEL,
	"alma":      FamilyRHEL,
	"oracle":    FamilyRHEL,
	"ol":        FamilyRHEL,
	"fedora":    FamilyRHEL, // dnf-managed, gated by major version like the rest
}

// archMap maps raw machine hardware strings to normalized architecture
// names as used in repository URLs and package architecture tags.
var archMap = map[string]string{
	"x86_64":  ArchAMD64,
	"amd64":   ArchAMD64,
	"aarch64": ArchARM64,
	"arm64":   ArchARM64,
	"armv7l":  ArchARMv7,
	"armv7":   ArchARMv7,
	"armhf":   ArchARMv7,
}

// normalizeArch converts a raw machine string to a normalized
// architecture name. Unmapped values yield ArchUnknown, never an error:
// architecture is advisory and must not abort detection.
func normalizeArch(raw string) string {
	if arch, ok := archMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return arch
	}
	return ArchUnknown
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps a distribution ID or family string to its
// package-manager family. Unrecognized values map to FamilyUnknown.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}

// majorVersion extracts the leading numeric component of a version
// string ("9.3" -> "9", "22.04" -> "22"). Returns "" when the version
// has no leading digits.
func majorVersion(version string) string {
	version = strings.TrimSpace(version)
	end := 0
	for end < len(version) && version[end] >= '0' && version[end] <= '9' {
		end++
	}
	return version[:end]
}
