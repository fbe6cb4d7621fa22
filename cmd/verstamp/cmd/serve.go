package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/serve"
)

var (
	// serveListenAddress overrides the listen address.
	serveListenAddress string

	// serveCmd hosts a release directory over HTTP.
	serveCmd = &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve a release directory over HTTP",
		Long: "Host the release manifest and staged artifacts from a directory so " +
			"check and selfupdate can reach them. Without an address override the " +
			"server listens on the port of the configured update folder URL, " +
			"falling back to " + serve.DefaultListenAddress + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &serve.Options{
				ConfigPath:    configPath,
				ListenAddress: serveListenAddress,
				Dir:           firstArg(args),
			}

			return serve.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	serveCmd.Flags().StringVarP(&serveListenAddress, "listen", "l", "",
		"listen address, for example :8333")

	rootCmd.AddCommand(serveCmd)
}
