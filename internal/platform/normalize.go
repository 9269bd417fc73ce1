package platform

import (
	"fmt"
	"strings"
)

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// normalizeArch converts GOARCH style values to release index arch names.
func normalizeArch(arch string) (string, error) {
	switch arch {
	case "amd64", "x86_64":
		return "amd64", nil
	case "386", "i386", "i686", "x86":
		return "386", nil
	case "arm", "armv6l", "armv7l":
		return "arm", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s (supported: %s)", arch, strings.Join(ValidArch, ", "))
	}
}

// normalizeOS converts GOOS values to release index OS names.
func normalizeOS(goos string) (string, error) {
	switch goos {
	case "macos":
		return "darwin", nil
	case "illumos":
		return "solaris", nil
	}

	if IsValidOS(goos) {
		return goos, nil
	}

	return "", fmt.Errorf("unsupported OS: %s (supported: %s)", goos, strings.Join(ValidOS, ", "))
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}

	return FamilyUnknown
}
