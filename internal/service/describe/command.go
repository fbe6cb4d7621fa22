package describe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/gitdescribe"
	"github.com/oshokin/verstamp/internal/logger"
)

// Options contains inputs for the describe and ldflags entry points.
type Options struct {
	// ConfigPath is an optional path to the project settings file.
	ConfigPath string
	// Dir is the working tree to query. Empty means the current directory.
	Dir string
	// Match overrides the tag glob from settings when non-empty.
	Match string
	// AllowShallow trusts describe output from a shallow checkout.
	AllowShallow bool
	// VersionPackage overrides the import path receiving the link-time
	// variables. Empty falls back to settings, then to
	// <module>/internal/version derived from go.mod.
	VersionPackage string
	// GoModPath points at the go.mod used to derive the version package.
	// Empty means Dir/go.mod.
	GoModPath string
	// Out receives command output. Defaults to standard output so shell
	// substitutions like go build -ldflags "$(verstamp ldflags)" work.
	Out io.Writer
}

// Snapshot captures the version facts gathered from a checkout.
type Snapshot struct {
	// Describe is the git describe output, or empty when the checkout
	// produced nothing trustworthy.
	Describe string
	// Revision is the full commit hash of HEAD.
	Revision string
	// Shallow reports whether the checkout history is truncated.
	Shallow bool
}

// gitRunner is the subset of gitdescribe.Runner the collector uses.
type gitRunner interface {
	Describe(ctx context.Context, match string) (string, error)
	Revision(ctx context.Context) (string, error)
	IsShallow(ctx context.Context) (bool, error)
}

// collector gathers version facts for a single command execution.
// It is unexported—call Run or RunLDFlags from callers.
type collector struct {
	// cfg holds the project settings, defaulted when no file exists.
	cfg *config.Config
	// git queries the working tree.
	git gitRunner
	// match is the effective tag glob.
	match string
	// allowShallow is the effective shallow override.
	allowShallow bool
}

var (
	// errNoTrustedDescribe is returned when the checkout cannot produce a
	// describe string worth printing.
	errNoTrustedDescribe = errors.New("no trustworthy describe output; " +
		"fetch full history or pass --allow-shallow")

	// errModulePathMissing is returned when go.mod carries no module path.
	errModulePathMissing = errors.New("module path not found in go.mod")
)

// Run executes the describe workflow: print the version string git derives
// for the current checkout. A shallow checkout without an explicit override
// is an error so CI pipelines fail loudly instead of tagging builds with a
// wrong version.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "verstamp-describe")

	c, err := newCollector(opts)
	if err != nil {
		return err
	}

	return c.runDescribe(ctx, output(opts))
}

// RunLDFlags executes the ldflags workflow: print the -X flags that stamp
// the collected facts into a binary. Unlike Run it degrades gracefully on a
// shallow checkout, omitting the version flag so the stamped binary falls
// through to its runtime sources.
func RunLDFlags(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "verstamp-ldflags")

	c, err := newCollector(opts)
	if err != nil {
		return err
	}

	versionPackage, err := c.resolveVersionPackage(opts)
	if err != nil {
		return err
	}

	return c.runLDFlags(ctx, versionPackage, output(opts))
}

// runDescribe prints the trusted describe string or fails.
func (c *collector) runDescribe(ctx context.Context, out io.Writer) error {
	snapshot, err := c.collect(ctx)
	if err != nil {
		return err
	}

	if snapshot.Describe == "" {
		return errNoTrustedDescribe
	}

	fmt.Fprintln(out, snapshot.Describe)

	return nil
}

// runLDFlags prints the linker flags for the collected snapshot.
func (c *collector) runLDFlags(ctx context.Context, versionPackage string, out io.Writer) error {
	snapshot, err := c.collect(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderFlags(snapshot, versionPackage, time.Now()))

	return nil
}

// Collect gathers a snapshot for the given options without printing
// anything. Other services use it when they need the same facts.
func Collect(ctx context.Context, opts *Options) (*Snapshot, error) {
	c, err := newCollector(opts)
	if err != nil {
		return nil, err
	}

	return c.collect(ctx)
}

// newCollector loads settings and wires the git runner.
func newCollector(opts *Options) (*collector, error) {
	cfg, err := config.LoadIfPresent(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	match := cfg.TagMatch
	if opts.Match != "" {
		match = opts.Match
	}

	return &collector{
		cfg:          cfg,
		git:          gitdescribe.New(opts.Dir),
		match:        match,
		allowShallow: opts.AllowShallow || cfg.AllowShallow,
	}, nil
}

// collect gathers the snapshot, enforcing the shallow checkout policy.
func (c *collector) collect(ctx context.Context) (*Snapshot, error) {
	shallow, err := c.git.IsShallow(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe checkout depth: %w", err)
	}

	revision, err := c.git.Revision(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD revision: %w", err)
	}

	snapshot := &Snapshot{
		Revision: revision,
		Shallow:  shallow,
	}

	if shallow && !c.allowShallow {
		// Describe against truncated history names whatever tag survived
		// the shallow fetch, which is frequently the wrong one.
		logger.Warn(ctx, "Checkout history is shallow, ignoring describe output; "+
			"fetch full history or set allow_shallow to override")

		return snapshot, nil
	}

	describeOutput, err := c.git.Describe(ctx, c.match)
	if err != nil {
		return nil, fmt.Errorf("describe checkout: %w", err)
	}

	snapshot.Describe = describeOutput

	return snapshot, nil
}

// resolveVersionPackage picks the import path receiving the -X variables:
// explicit option, then settings, then <module>/internal/version from go.mod.
func (c *collector) resolveVersionPackage(opts *Options) (string, error) {
	if opts.VersionPackage != "" {
		return opts.VersionPackage, nil
	}

	if c.cfg.VersionPackage != "" {
		return c.cfg.VersionPackage, nil
	}

	goModPath := opts.GoModPath
	if goModPath == "" {
		goModPath = filepath.Join(opts.Dir, "go.mod")
	}

	contents, err := os.ReadFile(filepath.Clean(goModPath))
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}

	modulePath := modfile.ModulePath(contents)
	if modulePath == "" {
		return "", errModulePathMissing
	}

	return modulePath + "/internal/version", nil
}

// shortCommitLength is the standard abbreviated git hash length.
const shortCommitLength = 12

// renderFlags composes the -X linker flags for the snapshot. A suppressed
// describe drops the version flag while commit and build time still go in.
// The commit is stamped in its abbreviated form; the full hash stays on the
// snapshot for consumers that need it, like the release manifest.
func renderFlags(snapshot *Snapshot, versionPackage string, buildTime time.Time) string {
	flags := make([]string, 0, 3)

	if snapshot.Describe != "" {
		flags = append(flags, fmt.Sprintf("-X %s.Version=%s", versionPackage, snapshot.Describe))
	}

	if commit := snapshot.Revision; commit != "" {
		if len(commit) > shortCommitLength {
			commit = commit[:shortCommitLength]
		}

		flags = append(flags, fmt.Sprintf("-X %s.Commit=%s", versionPackage, commit))
	}

	flags = append(flags, fmt.Sprintf("-X %s.BuildTime=%s",
		versionPackage, buildTime.UTC().Format(time.RFC3339)))

	return strings.Join(flags, " ")
}

// output returns the configured writer or standard output.
func output(opts *Options) io.Writer {
	if opts.Out != nil {
		return opts.Out
	}

	return os.Stdout
}
