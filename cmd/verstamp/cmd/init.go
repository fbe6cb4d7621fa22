package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/verstamp/internal/service/setup"
)

var (
	// initUpdateFolder seeds the settings file with an update folder URL.
	initUpdateFolder string

	// initVersionDir receives the scaffolded version package.
	initVersionDir string

	// initForce overwrites scaffolded files that already exist.
	initForce bool

	// initCmd scaffolds version stamping into a repository.
	initCmd = &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold version stamping into a repository",
		Long: "Create the settings file, a version package that resolves its version " +
			"from linker variables, module build info and the archive marker, and the " +
			".gitattributes rule that makes git archive substitute a describe string " +
			"into the marker. Existing files are left alone unless --force is passed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Forward --config only when the user set it, so the default
			// settings file lands inside the scaffolded project rather
			// than the current directory.
			cfgPath := ""
			if cmd.Flags().Changed("config") {
				cfgPath = configPath
			}

			options := &setup.Options{
				ConfigPath:   cfgPath,
				Dir:          firstArg(args),
				UpdateFolder: initUpdateFolder,
				VersionDir:   initVersionDir,
				Force:        initForce,
			}

			return setup.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	initCmd.Flags().StringVarP(&initUpdateFolder, "update-folder", "u", "",
		"update folder URL written into the settings file")
	initCmd.Flags().StringVar(&initVersionDir, "version-dir", setup.DefaultVersionDir,
		"directory of the scaffolded version package, relative to the project root")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"overwrite scaffolded files that already exist")

	rootCmd.AddCommand(initCmd)
}
