package binary

import (
	"errors"
	"time"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/release"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/shasums"
)

var (
	// ErrShasumMismatch is returned when the downloaded archive does not
	// match its manifest entry.
	ErrShasumMismatch = errors.New("shasum mismatch")
	// ErrInstallDir is returned when the install directory is unusable.
	ErrInstallDir = errors.New("invalid install directory")
)

// Options configures one download and install
type Options struct {
	Product string
	// Version is a release version or "latest"
	Version string
	OS      string
	Arch    string
	// InstallDir receives the extracted archive contents. Under
	// DownloadOnly it is only validated when non-empty.
	InstallDir string
	// KeepDir receives the archive when it is kept. Empty means the
	// current working directory.
	KeepDir string
	// VerifySignature enables the manifest signature check
	VerifySignature bool
	// DownloadOnly skips installation and keeps the archive
	DownloadOnly bool
	// Keep keeps the archive after installation
	Keep bool
}

// Result contains information about a completed run
type Result struct {
	Product  string
	Version  string
	Build    release.Build
	Checksum shasums.Checksum
	// SignedBy is the manifest signing key ID, empty when signature
	// verification was disabled.
	SignedBy string
	// Installed lists the paths written to the install directory
	Installed []string
	// KeptPath is where the archive was kept, if anywhere
	KeptPath string
	Duration time.Duration
}

// Verified reports whether the manifest was authenticated and the archive
// matched it.
func (r *Result) Verified() bool {
	return r.SignedBy != "" && r.Checksum == shasums.OK
}
