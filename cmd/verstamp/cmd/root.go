package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/logger"
	"github.com/oshokin/verstamp/internal/version"
)

// errUnknownLogLevel is returned when --log-level does not name a level.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel adjusts logging verbosity for every subcommand.
	logLevel string

	// rootCmd represents the base command of the version stamping toolkit.
	rootCmd = &cobra.Command{
		Use:   "verstamp",
		Short: "Derive, stamp and resolve trustworthy build versions",
		Long: "Verstamp derives a version string from a git checkout, stamps it into " +
			"binaries at build time, and resolves it again at run time from whatever " +
			"metadata survived the build. It also publishes release manifests and " +
			"keeps installed binaries current from them.",
		Version: version.Short(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if logLevel == "" {
				return nil
			}

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the verstamp CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// The --version flag prints the bare resolved version, nothing else,
	// so scripts can consume it without trimming.
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename,
		"path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"logging level: debug, info, warn or error")
}

// firstArg returns the first positional argument, or an empty string when
// the command was invoked without one.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}
