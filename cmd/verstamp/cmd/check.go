package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/check"
)

var (
	// checkUpdateFolder overrides the settings URL.
	checkUpdateFolder string

	// checkForce bypasses the cached check result.
	checkForce bool

	// checkCmd compares a deployed binary against the published manifest.
	checkCmd = &cobra.Command{
		Use:   "check [binary]",
		Short: "Check whether a newer release is published",
		Long: "Ask a deployed binary for its version, fetch the release manifest from " +
			"the update folder, and report whether an update is available. Without a " +
			"binary argument the running verstamp executable is checked. Results are " +
			"cached between runs; pass --force to query the update folder again.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &check.Options{
				ConfigPath:   configPath,
				UpdateFolder: checkUpdateFolder,
				BinaryPath:   firstArg(args),
				Force:        checkForce,
			}

			return check.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	checkCmd.Flags().StringVarP(&checkUpdateFolder, "update-folder", "u", "",
		"update folder URL hosting the release manifest")
	checkCmd.Flags().BoolVarP(&checkForce, "force", "f", false,
		"ignore the cached result and query the update folder")

	rootCmd.AddCommand(checkCmd)
}
