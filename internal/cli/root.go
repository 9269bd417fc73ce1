// Package cli implements the hcdl command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/platform"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/products"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/release"
	"github.com/ZebulonRouseFrantzich/hcdl/internal/version"
)

// Deps are the process level inputs of the command.
type Deps struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Lookuper envconfig.Lookuper
	Detector platform.Detector
	// TempDir is the parent of per-run temp directories
	TempDir string
	// KeepDir receives kept archives; empty means the working directory
	KeepDir string
}

type rootOpts struct {
	arch              string
	build             string
	check             bool
	completions       string
	downloadOnly      bool
	installDir        string
	keep              bool
	keyring           string
	listProducts      bool
	noVerifySignature bool
	os                string
	quiet             bool

	product string
	host    *platform.Info
	deps    Deps
}

// Execute runs the command against the process environment.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd(ctx, Deps{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Lookuper: envconfig.OsLookuper(),
		Detector: platform.NewDetector(),
	})

	return cmd.ExecuteContext(ctx)
}

// NewRootCmd builds the root command. Host detection runs once here so the
// --arch and --os defaults reflect the running machine.
func NewRootCmd(ctx context.Context, deps Deps) *cobra.Command {
	opts := &rootOpts{deps: deps}

	host, err := deps.Detector.Detect(ctx)
	if err != nil || host == nil {
		host = &platform.Info{}
	}
	opts.host = host

	cmd := &cobra.Command{
		Use:           "hcdl [flags] PRODUCT",
		Short:         "Download and verify HashiCorp products",
		Long:          "hcdl downloads a HashiCorp product release, verifies its SHA256SUMS signature and checksum, and installs it.",
		Version:       fmt.Sprintf("%s (%s)", version.Version, version.Commit),
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     products.List,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE:       validateRootCmd(opts),
		RunE:          runRootCmd(opts),
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	flags := cmd.Flags()
	flags.BoolVar(&opts.check, "check", false, "Check for the latest version and exit without downloading.")
	flags.BoolVarP(&opts.downloadOnly, "download-only", "D", false, "Only download the product, do not install it. Implies --keep.")
	flags.BoolVarP(&opts.keep, "keep", "k", false, "Keep downloaded zipfile after install.")
	flags.BoolVarP(&opts.listProducts, "list-products", "l", false, "List all available HashiCorp products.")
	flags.BoolVar(&opts.noVerifySignature, "no-verify-signature", false, "Disable GPG signature verification.")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Silence all non-error output")
	flags.StringVarP(&opts.arch, "arch", "a", host.Arch, fmt.Sprintf("Specify product architecture to download. [%s]", strings.Join(platform.ValidArch, ", ")))
	flags.StringVarP(&opts.build, "build", "b", release.LatestVersion, "Specify product build version to download.")
	flags.StringVarP(&opts.installDir, "install-dir", "d", "", "Specify directory to install product to.")
	flags.StringVarP(&opts.os, "os", "o", host.OS, fmt.Sprintf("Specify product OS family to download. [%s]", strings.Join(platform.ValidOS, ", ")))
	flags.StringVar(&opts.completions, "completions", "", fmt.Sprintf("Generate shell completions for the given shell [%s]", strings.Join(validShells, ", ")))
	flags.StringVar(&opts.keyring, "keyring", "", "Path to the OpenPGP public keyring used to verify signatures.")

	cmd.MarkFlagsMutuallyExclusive("check", "build")
	cmd.MarkFlagsMutuallyExclusive("check", "quiet")

	_ = cmd.MarkFlagDirname("install-dir")
	_ = cmd.MarkFlagFilename("keyring")
	_ = cmd.RegisterFlagCompletionFunc("arch", fixedCompletion(platform.ValidArch))
	_ = cmd.RegisterFlagCompletionFunc("os", fixedCompletion(platform.ValidOS))
	_ = cmd.RegisterFlagCompletionFunc("completions", fixedCompletion(validShells))

	return cmd
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func validateRootCmd(opts *rootOpts) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if opts.completions != "" {
			if !isValidShell(opts.completions) {
				return fmt.Errorf("invalid value %q for --completions (valid: %s)", opts.completions, strings.Join(validShells, ", "))
			}
			return nil
		}

		if opts.listProducts {
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("the following required arguments were not provided: PRODUCT")
		}

		opts.product = args[0]
		if !products.IsValid(opts.product) {
			return fmt.Errorf("invalid product %q (see --list-products)", opts.product)
		}

		if opts.check {
			return nil
		}

		if opts.arch == "" {
			return fmt.Errorf("could not detect a supported architecture for %s, use --arch", opts.host.ArchRaw)
		}
		if !platform.IsValidArch(opts.arch) {
			return fmt.Errorf("invalid value %q for --arch (valid: %s)", opts.arch, strings.Join(platform.ValidArch, ", "))
		}

		if opts.os == "" {
			return fmt.Errorf("could not detect a supported OS for %s, use --os", opts.host.OSRaw)
		}
		if !platform.IsValidOS(opts.os) {
			return fmt.Errorf("invalid value %q for --os (valid: %s)", opts.os, strings.Join(platform.ValidOS, ", "))
		}

		return nil
	}
}
