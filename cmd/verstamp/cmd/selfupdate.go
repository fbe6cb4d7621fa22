package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/selfupdate"
)

var (
	// selfupdateFolder overrides the settings URL.
	selfupdateFolder string

	// selfupdateTarget is the binary to replace instead of the running one.
	selfupdateTarget string

	// selfupdateForce applies the published binary even when versions match.
	selfupdateForce bool

	// selfupdateCmd replaces the binary with the published release.
	selfupdateCmd = &cobra.Command{
		Use:   "selfupdate",
		Short: "Replace this binary with the published release",
		Long: "Fetch the release manifest from the update folder and, when it " +
			"publishes a newer version, download the platform artifact, verify its " +
			"checksum, and swap it in place of the running executable. A marker file " +
			"prevents two updates from racing each other.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &selfupdate.Options{
				ConfigPath:   configPath,
				UpdateFolder: selfupdateFolder,
				TargetPath:   selfupdateTarget,
				Force:        selfupdateForce,
			}

			return selfupdate.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	selfupdateCmd.Flags().StringVarP(&selfupdateFolder, "update-folder", "u", "",
		"update folder URL hosting the release manifest")
	selfupdateCmd.Flags().StringVar(&selfupdateTarget, "target", "",
		"path of the binary to replace, defaults to the running executable")
	selfupdateCmd.Flags().BoolVarP(&selfupdateForce, "force", "f", false,
		"apply the published binary even when versions match")

	rootCmd.AddCommand(selfupdateCmd)
}
