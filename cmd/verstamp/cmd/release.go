package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/release"
)

var (
	// releaseOutputDir is where artifacts are staged and the manifest lands.
	releaseOutputDir string

	// releaseArtifacts overrides the settings list of files to publish.
	releaseArtifacts []string

	// releaseIncludeSelf stages the running binary as a platform artifact.
	releaseIncludeSelf bool

	// releaseVersion stamps the manifest without querying git.
	releaseVersion string

	// releaseAllowShallow trusts describe output from truncated history.
	releaseAllowShallow bool

	// releaseCmd writes the release manifest for distribution.
	releaseCmd = &cobra.Command{
		Use:   "release [update-folder]",
		Short: "Prepare a release manifest for distribution",
		Long: "Stage the configured artifacts, checksum them, and write the release " +
			"manifest describing the version, the commit it was built from, and every " +
			"published file. The optional update folder URL is persisted into the " +
			"settings so installed binaries know where to check for updates.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &release.Options{
				ConfigPath:      configPath,
				UpdateFolder:    firstArg(args),
				OutputDir:       releaseOutputDir,
				Artifacts:       releaseArtifacts,
				IncludeSelf:     releaseIncludeSelf,
				VersionOverride: releaseVersion,
				AllowShallow:    releaseAllowShallow,
			}

			return release.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	releaseCmd.Flags().StringVarP(&releaseOutputDir, "output", "o", "",
		"directory receiving staged artifacts and the manifest")
	releaseCmd.Flags().StringSliceVarP(&releaseArtifacts, "artifact", "a", nil,
		"artifact path to publish, repeatable")
	releaseCmd.Flags().BoolVar(&releaseIncludeSelf, "include-self", false,
		"publish the running verstamp binary under its platform artifact name")
	releaseCmd.Flags().StringVar(&releaseVersion, "version", "",
		"release version, skipping the git queries")
	releaseCmd.Flags().BoolVar(&releaseAllowShallow, "allow-shallow", false,
		"trust describe output from a shallow checkout")

	rootCmd.AddCommand(releaseCmd)
}
