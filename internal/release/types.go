// Package release talks to the HashiCorp release index and checkpoint API.
//
// It resolves "latest" to a concrete version, fetches the product version
// metadata (builds, SHA256SUMS filename and its signature filename), picks
// the build for a platform and derives the download URLs for the manifest
// and signature.
package release

import "errors"

const (
	// DefaultReleasesURL is the base of the release index. It always ends in "/".
	DefaultReleasesURL = "https://releases.hashicorp.com/"
	// DefaultCheckpointURL is the base of the version check API.
	DefaultCheckpointURL = "https://checkpoint-api.hashicorp.com/v1/check/"
	// LatestVersion asks for the current version of a product
	LatestVersion = "latest"
)

// ErrBuildNotFound is returned when a version has no build for a platform.
var ErrBuildNotFound = errors.New("no build available")

// Build is one platform specific distribution of a product version.
type Build struct {
	Arch     string `json:"arch"`
	OS       string `json:"os"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	// Shasum is set by some indexes per build. The consolidated
	// SHA256SUMS manifest is authoritative and this field is not used for
	// verification.
	Shasum string `json:"shasum,omitempty"`
}

// ProductVersion is the index.json record of one product release.
type ProductVersion struct {
	Builds           []Build `json:"builds"`
	Name             string  `json:"name"`
	Version          string  `json:"version"`
	Shasums          string  `json:"shasums"`
	ShasumsSignature string  `json:"shasums_signature"`

	releasesURL string
}

// Check is the checkpoint API response for a product.
type Check struct {
	Product            string `json:"product"`
	CurrentVersion     string `json:"current_version"`
	CurrentRelease     int64  `json:"current_release"`
	CurrentDownloadURL string `json:"current_download_url"`
	CurrentChangelog   string `json:"current_changelog_url"`
	ProjectWebsite     string `json:"project_website"`
}
