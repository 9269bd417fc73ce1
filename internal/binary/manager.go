package binary

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/release"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/shasums"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/tmpfile"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/ui"
)

// Releases resolves release metadata.
type Releases interface {
	ResolveVersion(ctx context.Context, product, version string) (string, error)
	ProductVersion(ctx context.Context, product, version string) (*release.ProductVersion, error)
}

// Checker produces the checksum verdict for a downloaded file.
type Checker interface {
	Check(manifest *shasums.Shasums, f shasums.File) (shasums.Checksum, error)
}

// ShasumChecker checks files against the manifest entry for their name.
type ShasumChecker struct{}

// Check implements Checker.
func (ShasumChecker) Check(manifest *shasums.Shasums, f shasums.File) (shasums.Checksum, error) {
	return manifest.Check(f)
}

// Manager orchestrates download, verification, and installation
type Manager struct {
	releases   Releases
	downloader Fetcher
	verifier   SignatureVerifier
	checker    Checker
	extractor  *Extractor
	printer    *ui.Printer
	logger     *zap.Logger
	tempDir    string
}

// Config holds configuration for the manager
type Config struct {
	Releases   Releases
	Downloader Fetcher
	// Verifier is required when signature verification is enabled
	Verifier SignatureVerifier
	// Checker defaults to ShasumChecker
	Checker Checker
	Printer *ui.Printer
	Logger  *zap.Logger
	// TempDir is the parent of the per-run temp directory
	TempDir string
}

// NewManager creates a new manager
func NewManager(config Config) (*Manager, error) {
	if config.Releases == nil {
		return nil, fmt.Errorf("Releases is required")
	}

	if config.Downloader == nil {
		return nil, fmt.Errorf("Downloader is required")
	}

	m := &Manager{
		releases:   config.Releases,
		downloader: config.Downloader,
		verifier:   config.Verifier,
		checker:    config.Checker,
		extractor:  NewExtractor(),
		printer:    config.Printer,
		logger:     config.Logger,
		tempDir:    config.TempDir,
	}

	if m.checker == nil {
		m.checker = ShasumChecker{}
	}
	if m.printer == nil {
		m.printer = ui.NewPrinter(io.Discard, io.Discard, ui.Options{Quiet: true})
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	return m, nil
}

// Latest returns the current version of product.
func (m *Manager) Latest(ctx context.Context, product string) (string, error) {
	return m.releases.ResolveVersion(ctx, product, release.LatestVersion)
}

// Run resolves, downloads, verifies, and installs one build. The manifest
// signature is checked before the manifest is parsed, and the archive is
// only hashed once the manifest is trusted. A mismatch returns the result
// alongside ErrShasumMismatch.
func (m *Manager) Run(ctx context.Context, opts Options) (*Result, error) {
	startTime := time.Now()

	if opts.Product == "" {
		return nil, fmt.Errorf("product is required")
	}

	if opts.VerifySignature && m.verifier == nil {
		return nil, ErrSignatureRequired
	}

	if !opts.DownloadOnly || opts.InstallDir != "" {
		if err := ValidateInstallDir(opts.InstallDir); err != nil {
			return nil, err
		}
	}

	logger := m.logger.With(zap.String("product", opts.Product))

	version, err := m.releases.ResolveVersion(ctx, opts.Product, opts.Version)
	if err != nil {
		return nil, fmt.Errorf("resolve version: %w", err)
	}

	pv, err := m.releases.ProductVersion(ctx, opts.Product, version)
	if err != nil {
		return nil, fmt.Errorf("product version: %w", err)
	}

	build, err := pv.RequireBuild(opts.Arch, opts.OS)
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("version", pv.Version), zap.String("os", build.OS), zap.String("arch", build.Arch))
	logger.Debug("selected build", zap.String("url", build.URL))

	dir, err := tmpfile.NewDir(m.tempDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := dir.Remove(); err != nil {
			logger.Warn("failed to remove temp dir", zap.String("path", dir.Path()), zap.Error(err))
		}
	}()

	result := &Result{
		Product:  pv.Name,
		Version:  pv.Version,
		Build:    build,
		Checksum: shasums.Bad,
	}

	manifest, signedBy, err := m.fetchManifest(ctx, dir, pv, opts.VerifySignature, logger)
	if err != nil {
		return nil, err
	}
	result.SignedBy = signedBy

	filename := buildFilename(build)
	m.printer.Info("Downloading %s", filename)

	archive, err := m.fetch(ctx, dir, filename, build.URL)
	if err != nil {
		return nil, err
	}

	checksum, err := m.checker.Check(manifest, archive)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", filename, err)
	}
	result.Checksum = checksum

	logger.Info("checksum verdict", zap.String("file", filename), zap.Stringer("verdict", checksum))

	if checksum != shasums.OK {
		m.printer.Error("SHA256 of %s does not match %s", filename, pv.Shasums)
		result.Duration = time.Since(startTime)
		return result, fmt.Errorf("%w: %s", ErrShasumMismatch, filename)
	}
	m.printer.Success("SHA256 of %s OK", filename)

	if !opts.DownloadOnly {
		installed, err := m.install(archive, opts)
		if err != nil {
			return nil, err
		}
		result.Installed = installed
		m.printer.Success("Installed %s %s to %s", pv.Name, pv.Version, opts.InstallDir)
	}

	if opts.DownloadOnly || opts.Keep {
		keepDir := opts.KeepDir
		if keepDir == "" {
			keepDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("get working dir: %w", err)
			}
		}

		kept, err := archive.Persist(keepDir)
		if err != nil {
			return nil, err
		}
		result.KeptPath = kept
		m.printer.Detail("Kept %s", kept)
	}

	result.Duration = time.Since(startTime)
	logger.Debug("run complete", zap.Duration("duration", result.Duration))

	return result, nil
}

// fetchManifest downloads the checksum manifest and, when verify is set,
// authenticates it before it is parsed.
func (m *Manager) fetchManifest(ctx context.Context, dir *tmpfile.Dir, pv *release.ProductVersion, verify bool, logger *zap.Logger) (*shasums.Shasums, string, error) {
	m.printer.Info("Downloading %s", pv.Shasums)

	manifestFile, err := m.fetch(ctx, dir, pv.Shasums, pv.ShasumsURL())
	if err != nil {
		return nil, "", err
	}

	content, err := manifestFile.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", pv.Shasums, err)
	}

	var signedBy string
	if verify {
		sigFile, err := m.fetch(ctx, dir, pv.ShasumsSignature, pv.ShasumsSignatureURL())
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %w", ErrSignatureMissing, pv.ShasumsSignature, err)
		}

		signature, err := sigFile.ReadAll()
		if err != nil {
			return nil, "", fmt.Errorf("%w: read %s: %v", ErrSignatureMissing, pv.ShasumsSignature, err)
		}

		signedBy, err = m.verifier.Verify(content, signature)
		if err != nil {
			m.printer.Error("Signature of %s is not valid", pv.Shasums)
			return nil, "", fmt.Errorf("verify %s: %w", pv.Shasums, err)
		}

		logger.Info("manifest signature verified", zap.String("key_id", signedBy))
		m.printer.Success("Signature of %s OK (key %s)", pv.Shasums, signedBy)
	} else {
		logger.Warn("signature verification disabled", zap.String("file", pv.Shasums))
		m.printer.Warn("Skipping signature verification of %s", pv.Shasums)
	}

	return shasums.New(string(content)), signedBy, nil
}

// fetch downloads u into dir under filename.
func (m *Manager) fetch(ctx context.Context, dir *tmpfile.Dir, filename, u string) (*tmpfile.TmpFile, error) {
	f, err := dir.File(filename)
	if err != nil {
		return nil, err
	}

	if err := m.downloader.DownloadToFile(ctx, u, f.Path()); err != nil {
		return nil, err
	}

	return f, nil
}

// install extracts the archive and marks the product binary executable.
func (m *Manager) install(archive *tmpfile.TmpFile, opts Options) ([]string, error) {
	installed, err := m.extractor.ExtractZip(archive.Path(), opts.InstallDir)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", archive.Name(), err)
	}

	binName := opts.Product
	if opts.OS == "windows" || (opts.OS == "" && runtime.GOOS == "windows") {
		binName += ".exe"
	}

	for _, p := range installed {
		if filepath.Base(p) == binName {
			if err := SetExecutable(p); err != nil {
				return nil, err
			}
		}
	}

	return installed, nil
}

// ValidateInstallDir checks that dir exists and is a directory.
func ValidateInstallDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: not set", ErrInstallDir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrInstallDir, dir)
		}
		return fmt.Errorf("%w: %v", ErrInstallDir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInstallDir, dir)
	}

	return nil
}

// buildFilename returns the release filename of b, falling back to the last
// element of its URL path.
func buildFilename(b release.Build) string {
	if b.Filename != "" {
		return b.Filename
	}

	if u, err := url.Parse(b.URL); err == nil {
		return path.Base(u.Path)
	}

	return path.Base(b.URL)
}
