package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/binary"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/config"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/logging"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/products"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/release"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/ui"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/version"
)

func runRootCmd(opts *rootOpts) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if opts.completions != "" {
			return writeCompletions(cmd.Root(), opts.deps.Stdout, opts.completions)
		}

		if opts.listProducts {
			printer := ui.NewPrinter(opts.deps.Stdout, opts.deps.Stderr, ui.Options{})
			for _, p := range products.List {
				printer.Plain("%s", p)
			}
			return nil
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := config.Resolve(ctx, opts.deps.Lookuper)
		if err != nil {
			return err
		}

		if opts.installDir != "" {
			cfg.InstallDir = opts.installDir
			cfg.InstallDirSet = true
		}
		if opts.keyring != "" {
			cfg.Keyring = opts.keyring
		}

		logger, err := logging.NewLogger(opts.deps.Stderr, logging.Level(cfg.Log.Level), logging.Format(cfg.Log.Format))
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		logger = logger.Named("hcdl").With(
			zap.String("run_id", uuid.NewString()),
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
		)
		logger.Debug("loaded config", zap.Object("config", cfg), zap.Object("host", opts.host))

		printer := ui.NewPrinter(opts.deps.Stdout, opts.deps.Stderr, ui.Options{
			Color: cfg.Color,
			Quiet: opts.quiet,
		})

		userAgent := fmt.Sprintf("hcdl/%s (%s)", version.Version, opts.host.Comment())

		downloader := binary.NewDownloader(
			binary.WithTimeout(cfg.Timeout),
			binary.WithRetries(cfg.Retries),
			binary.WithUserAgent(userAgent),
			binary.WithLogger(logger.Named("download")),
		)

		client := release.New(
			release.WithHTTPClient(downloader.HTTPClient()),
			release.WithUserAgent(userAgent),
			release.WithReleasesURL(cfg.ReleasesURL),
			release.WithCheckpointURL(cfg.CheckpointURL),
			release.WithLogger(logger.Named("release")),
		)

		if opts.check {
			return runCheck(ctx, client, printer, opts.product)
		}

		// A download-only run ignores the default install dir but still
		// rejects one that was given explicitly.
		installDir := cfg.InstallDir
		if opts.downloadOnly && !cfg.InstallDirSet {
			installDir = ""
		}
		if installDir != "" || !opts.downloadOnly {
			if err := binary.ValidateInstallDir(installDir); err != nil {
				return err
			}
		}

		var verifier binary.SignatureVerifier
		if !opts.noVerifySignature {
			verifier, err = loadVerifier(ctx, cfg, downloader, logger)
			if err != nil {
				return err
			}
		}

		mgr, err := binary.NewManager(binary.Config{
			Releases:   client,
			Downloader: downloader,
			Verifier:   verifier,
			Printer:    printer,
			Logger:     logger.Named("manager"),
			TempDir:    opts.deps.TempDir,
		})
		if err != nil {
			return err
		}

		result, err := mgr.Run(ctx, binary.Options{
			Product:         opts.product,
			Version:         opts.build,
			OS:              opts.os,
			Arch:            opts.arch,
			InstallDir:      installDir,
			KeepDir:         opts.deps.KeepDir,
			VerifySignature: !opts.noVerifySignature,
			DownloadOnly:    opts.downloadOnly,
			Keep:            opts.keep,
		})
		if err != nil {
			return err
		}

		logger.Info("finished",
			zap.String("product", result.Product),
			zap.String("product_version", result.Version),
			zap.Stringer("checksum", result.Checksum),
			zap.String("signed_by", result.SignedBy),
			zap.Duration("duration", result.Duration),
		)

		return nil
	}
}

func runCheck(ctx context.Context, client *release.Client, printer *ui.Printer, product string) error {
	check, err := client.Check(ctx, product)
	if err != nil {
		return err
	}

	printer.Title("Latest version of %s: %s", product, check.CurrentVersion)
	if check.CurrentChangelog != "" {
		printer.Detail("Changelog: %s", check.CurrentChangelog)
	}

	return nil
}

// loadVerifier loads the configured keyring. The default keyring is fetched
// on first use; an explicit one must already exist.
func loadVerifier(ctx context.Context, cfg *config.Config, f binary.Fetcher, logger *zap.Logger) (*binary.GPGVerifier, error) {
	path, explicit := cfg.KeyringPath()

	if !explicit {
		if err := binary.EnsureKeyring(ctx, f, path, cfg.KeyURL, logger.Named("keyring")); err != nil {
			return nil, err
		}
	}

	return binary.NewGPGVerifierFromFile(path)
}
