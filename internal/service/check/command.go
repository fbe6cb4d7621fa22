package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/domain/release"
	"github.com/oshokin/verstamp/internal/logger"
	"github.com/oshokin/verstamp/internal/repository/manifest"
	staterepo "github.com/oshokin/verstamp/internal/repository/state"
	"github.com/oshokin/verstamp/internal/version"
)

var (
	errUpdateFolderRequired = errors.New("update folder must be provided")
	errInvalidVersionOutput = errors.New("invalid version output format")
)

const (
	// versionCommandTimeout is the timeout for executing version commands.
	versionCommandTimeout = 10 * time.Second

	// versionOutputPrefix starts the long version line verstamp binaries print.
	versionOutputPrefix = "version: "
)

// Options are inputs accepted by the check entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// UpdateFolder overrides the settings URL when non-empty.
	UpdateFolder string
	// BinaryPath names an installed executable to query for its version.
	// Empty means the running verstamp binary itself.
	BinaryPath string
	// Force bypasses the cached check result.
	Force bool
	// Out receives the human-readable verdict.
	Out io.Writer
}

// checker holds the collaborators for a single check execution.
// It is intentionally unexported—call Run(ctx, opts) from callers.
type checker struct {
	cfg          *config.Config      // Project settings with defaults applied.
	manifestRepo manifest.Repository // Remote manifest access.
	stateRepo    staterepo.Repository // Cached check outcomes.
	binaryPath   string              // Executable to version, empty for self.
	force        bool                // Ignore the cache when set.
	out          io.Writer           // Destination for the verdict line.
}

// Run executes the update check and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "verstamp-check")

	c, err := newChecker(opts)
	if err != nil {
		return err
	}

	if err = c.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Check failed", "error", err)
		return err
	}

	return nil
}

// newChecker loads settings and wires the repositories.
func newChecker(opts *Options) (*checker, error) {
	cfg, err := config.LoadIfPresent(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	updateFolder := opts.UpdateFolder
	if updateFolder == "" {
		updateFolder = cfg.UpdateFolder
	}

	if updateFolder == "" {
		return nil, errUpdateFolderRequired
	}

	manifestRepo, err := manifest.NewHTTPRepository(updateFolder, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	c := &checker{
		cfg:          cfg,
		manifestRepo: manifestRepo,
		stateRepo:    staterepo.NewFileRepository(cfg.StateFile),
		binaryPath:   opts.BinaryPath,
		force:        opts.Force,
		out:          opts.Out,
	}

	if c.out == nil {
		c.out = os.Stdout
	}

	return c, nil
}

// run compares the local version with the published one:
// 1) Detect the local version, from the named binary or the running one.
// 2) Reuse a fresh cached remote version when allowed.
// 3) Otherwise fetch the manifest and cache the outcome.
func (c *checker) run(ctx context.Context) error {
	localVersion, err := c.detectLocalVersion(ctx)
	if err != nil {
		return err
	}

	remoteVersion, cached, err := c.resolveRemoteVersion(ctx, localVersion)
	if err != nil {
		return err
	}

	updateAvailable := release.IsNewer(remoteVersion, localVersion)

	logger.InfoKV(ctx, "Check finished",
		"local", localVersion, "remote", remoteVersion,
		"update_available", updateAvailable, "cached", cached)

	suffix := ""
	if cached {
		suffix = " (cached)"
	}

	if updateAvailable {
		fmt.Fprintf(c.out, "update available: %s -> %s%s\n", localVersion, remoteVersion, suffix)
	} else {
		fmt.Fprintf(c.out, "up to date: %s%s\n", localVersion, suffix)
	}

	return nil
}

// detectLocalVersion picks the version of the subject under check.
func (c *checker) detectLocalVersion(ctx context.Context) (string, error) {
	if c.binaryPath == "" {
		return version.Current(), nil
	}

	return detectBinaryVersion(ctx, c.binaryPath)
}

// resolveRemoteVersion returns the published version, preferring a fresh
// cached value to avoid hammering the update folder on every invocation.
func (c *checker) resolveRemoteVersion(ctx context.Context, localVersion string) (string, bool, error) {
	if !c.force {
		cachedState, err := c.stateRepo.Load(ctx)

		switch {
		case err == nil:
			if time.Since(cachedState.CheckedAt) <= c.cfg.CheckInterval {
				return cachedState.RemoteVersion, true, nil
			}
		case errors.Is(err, staterepo.ErrNotFound):
			// First check, nothing cached yet.
		default:
			return "", false, fmt.Errorf("load check state: %w", err)
		}
	}

	remote, err := c.manifestRepo.Load(ctx)
	if err != nil {
		return "", false, fmt.Errorf("download release manifest: %w", err)
	}

	newState := &release.CheckState{
		CheckedAt:       time.Now().UTC(),
		RemoteVersion:   remote.Version,
		UpdateAvailable: release.IsNewer(remote.Version, localVersion),
	}

	if err = c.stateRepo.Save(ctx, newState); err != nil {
		return "", false, fmt.Errorf("save check state: %w", err)
	}

	return remote.Version, false, nil
}

// detectBinaryVersion runs the given executable to get its version.
// It tries the version subcommand first and falls back to the --version flag.
func detectBinaryVersion(ctx context.Context, binaryPath string) (string, error) {
	var lastErr error

	for _, args := range [][]string{{"version"}, {"--version"}} {
		output, err := runVersionCommand(ctx, binaryPath, args...)
		if err != nil {
			lastErr = err
			continue
		}

		var parsed string

		parsed, err = parseVersionOutput(output)
		if err != nil {
			lastErr = err
			continue
		}

		return parsed, nil
	}

	return "", fmt.Errorf("get version from %s: %w", binaryPath, lastErr)
}

// runVersionCommand executes one version query with a bounded timeout.
func runVersionCommand(ctx context.Context, binaryPath string, args ...string) (string, error) {
	// Create a context with timeout to avoid hanging.
	cmdCtx, cancel := context.WithTimeout(ctx, versionCommandTimeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, binaryPath, args...).Output()
	if err != nil {
		return "", err
	}

	return string(output), nil
}

// parseVersionOutput extracts the version from executable version output.
// It understands the long "version: X, commit: ..." line and tools that
// print a bare version as their first line.
func parseVersionOutput(output string) (string, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return "", errInvalidVersionOutput
	}

	if strings.HasPrefix(output, versionOutputPrefix) {
		parts := strings.Split(output, ",")

		parsed := strings.TrimSpace(strings.TrimPrefix(parts[0], versionOutputPrefix))
		if parsed != "" {
			return parsed, nil
		}

		return "", errInvalidVersionOutput
	}

	firstLine, _, _ := strings.Cut(output, "\n")

	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" || strings.ContainsRune(firstLine, ' ') {
		return "", errInvalidVersionOutput
	}

	return firstLine, nil
}
