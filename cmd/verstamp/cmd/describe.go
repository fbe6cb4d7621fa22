package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/describe"
)

var (
	// describeMatch narrows tag selection to a glob.
	describeMatch string

	// describeAllowShallow trusts output from truncated history.
	describeAllowShallow bool

	// describeCmd prints the version string git derives for a checkout.
	describeCmd = &cobra.Command{
		Use:   "describe [dir]",
		Short: "Print the version git derives for a checkout",
		Long: "Print the git describe string for the checkout: the nearest tag, the " +
			"number of commits since it, the abbreviated commit hash, and a -dirty " +
			"suffix when the working tree has local modifications. A shallow checkout " +
			"is rejected unless --allow-shallow is passed, because its describe output " +
			"can silently name the wrong tag.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &describe.Options{
				ConfigPath:   configPath,
				Dir:          firstArg(args),
				Match:        describeMatch,
				AllowShallow: describeAllowShallow,
			}

			return describe.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	describeCmd.Flags().StringVarP(&describeMatch, "match", "m", "",
		"only consider tags matching the glob")
	describeCmd.Flags().BoolVar(&describeAllowShallow, "allow-shallow", false,
		"trust describe output from a shallow checkout")

	rootCmd.AddCommand(describeCmd)
}
