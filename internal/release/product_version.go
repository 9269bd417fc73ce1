package release

import (
	"fmt"
	"strings"
)

// SelectBuild returns the first build matching arch and os exactly.
func SelectBuild(builds []Build, arch, os string) (Build, bool) {
	for _, b := range builds {
		if b.Arch == arch && b.OS == os {
			return b, true
		}
	}

	return Build{}, false
}

// Build returns the build for arch and os, if the version has one.
func (pv *ProductVersion) Build(arch, os string) (Build, bool) {
	return SelectBuild(pv.Builds, arch, os)
}

// RequireBuild is Build that reports a missing platform as ErrBuildNotFound.
func (pv *ProductVersion) RequireBuild(arch, os string) (Build, error) {
	b, ok := pv.Build(arch, os)
	if !ok {
		return Build{}, fmt.Errorf("%w for %s %s on %s/%s", ErrBuildNotFound, pv.Name, pv.Version, os, arch)
	}

	return b, nil
}

// ShasumsURL returns the URL of the SHA256SUMS manifest
func (pv *ProductVersion) ShasumsURL() string {
	return pv.fileURL(pv.Shasums)
}

// ShasumsSignatureURL returns the URL of the detached manifest signature
func (pv *ProductVersion) ShasumsSignatureURL() string {
	return pv.fileURL(pv.ShasumsSignature)
}

func (pv *ProductVersion) fileURL(filename string) string {
	base := pv.releasesURL
	if base == "" {
		base = DefaultReleasesURL
	}

	return fmt.Sprintf("%s%s/%s/%s", base, pv.Name, pv.Version, filename)
}

// Validate checks the fields the download pipeline depends on.
func (pv *ProductVersion) Validate() error {
	if pv.Name == "" {
		return fmt.Errorf("product version has no name")
	}

	if pv.Version == "" {
		return fmt.Errorf("product version %s has no version", pv.Name)
	}

	// The manifest and its signature are always published together
	if pv.Shasums == "" || pv.ShasumsSignature == "" {
		return fmt.Errorf("product version %s %s is missing shasums or shasums signature", pv.Name, pv.Version)
	}

	if pv.Builds == nil {
		pv.Builds = []Build{}
	}

	return nil
}

// normalizeBaseURL makes sure base ends with exactly one "/".
func normalizeBaseURL(base string) string {
	return strings.TrimRight(base, "/") + "/"
}
