package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/describe"
)

var (
	// ldflagsMatch narrows tag selection to a glob.
	ldflagsMatch string

	// ldflagsAllowShallow trusts output from truncated history.
	ldflagsAllowShallow bool

	// ldflagsPackage overrides the import path receiving the variables.
	ldflagsPackage string

	// ldflagsCmd prints the linker flags that stamp version facts into a build.
	ldflagsCmd = &cobra.Command{
		Use:   "ldflags [dir]",
		Short: "Print linker flags that stamp version facts into a build",
		Long: "Print the -X flags that inject the describe string, the commit hash and " +
			"the build timestamp into a version package, for use as:\n\n" +
			"  go build -ldflags \"$(verstamp ldflags)\"\n\n" +
			"The target package defaults to <module>/internal/version, derived from " +
			"go.mod. On a shallow checkout the version flag is omitted so the stamped " +
			"binary falls back to its runtime sources instead of carrying a wrong tag.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &describe.Options{
				ConfigPath:     configPath,
				Dir:            firstArg(args),
				Match:          ldflagsMatch,
				AllowShallow:   ldflagsAllowShallow,
				VersionPackage: ldflagsPackage,
			}

			return describe.RunLDFlags(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	ldflagsCmd.Flags().StringVarP(&ldflagsMatch, "match", "m", "",
		"only consider tags matching the glob")
	ldflagsCmd.Flags().BoolVar(&ldflagsAllowShallow, "allow-shallow", false,
		"trust describe output from a shallow checkout")
	ldflagsCmd.Flags().StringVarP(&ldflagsPackage, "package", "p", "",
		"import path of the package receiving the variables")

	rootCmd.AddCommand(ldflagsCmd)
}
