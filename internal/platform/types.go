// Package platform resolves the host OS and architecture to the names used
// by the HashiCorp release index.
//
// The defaults for --os and --arch are decided at process start from
// runtime.GOOS and runtime.GOARCH. Hosts outside the supported sets get an
// empty default and must pass the flag explicitly. On Linux the distribution
// is detected with gopsutil and only used for diagnostics.
package platform

import (
	"context"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ValidArch lists the architectures accepted for --arch.
var ValidArch = []string{
	"386",
	"amd64",
	"arm",
}

// ValidOS lists the operating systems accepted for --os.
var ValidOS = []string{
	"darwin",
	"freebsd",
	"linux",
	"openbsd",
	"solaris",
	"windows",
}

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // release index OS name, empty if unsupported
	Arch     string // release index arch name, empty if unsupported
	OSRaw    string // runtime.GOOS
	ArchRaw  string // runtime.GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// Comment describes the host for a User-Agent header, e.g.
// "linux; amd64; ubuntu 22.04".
func (i *Info) Comment() string {
	parts := []string{i.OSRaw, i.ArchRaw}
	if i.Platform != "" {
		parts = append(parts, strings.TrimSpace(i.Platform+" "+i.Version))
	}

	return strings.Join(parts, "; ")
}

func (i *Info) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("os", i.OS)
	enc.AddString("arch", i.Arch)
	enc.AddString("os_raw", i.OSRaw)
	enc.AddString("arch_raw", i.ArchRaw)
	if i.Platform != "" {
		enc.AddString("platform", i.Platform)
		enc.AddString("family", i.Family)
		enc.AddString("version", i.Version)
	}
	return nil
}

// IsValidArch reports whether arch is in ValidArch.
func IsValidArch(arch string) bool {
	return contains(ValidArch, arch)
}

// IsValidOS reports whether os is in ValidOS.
func IsValidOS(os string) bool {
	return contains(ValidOS, os)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
