// Package binary downloads, verifies, and installs HashiCorp release
// archives.
//
// # Security Model
//
// An archive is installed only after:
//   - the SHA256SUMS manifest's detached signature verifies against a
//     trusted OpenPGP keyring (unless verification is disabled), and
//   - the archive's SHA-256 digest matches its manifest entry.
//
// The signature is checked before the manifest is parsed. A failed or
// missing signature aborts the run before the archive is downloaded, so an
// unauthenticated manifest can never produce a match.
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    Releases:   release.New(),
//	    Downloader: binary.NewDownloader(),
//	    Verifier:   verifier,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := mgr.Run(ctx, binary.Options{
//	    Product:         "terraform",
//	    Version:         "latest",
//	    OS:              "linux",
//	    Arch:            "amd64",
//	    InstallDir:      "/usr/local/bin",
//	    VerifySignature: true,
//	})
//
// # Architecture
//
// The package is organized into several components:
//   - Manager: resolve, download, authenticate, verify, install
//   - Downloader: HTTP download with retry logic
//   - GPGVerifier: detached signature checks over the manifest
//   - Keyring: loading and first-run fetching of the public key
//   - Extractor: zip extraction into the install directory
package binary
