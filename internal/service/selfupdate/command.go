package selfupdate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/domain/release"
	"github.com/oshokin/verstamp/internal/logger"
	"github.com/oshokin/verstamp/internal/repository/manifest"
	"github.com/oshokin/verstamp/internal/service/common"
	"github.com/oshokin/verstamp/internal/version"
)

var (
	errUpdateAlreadyRunning = errors.New("an update is already running")
	errUpdateFolderRequired = errors.New("update folder must be provided")
	errArtifactNotPublished = errors.New("artifact is missing from the manifest")
)

// Options are inputs accepted by the selfupdate entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// UpdateFolder overrides the settings URL when non-empty.
	UpdateFolder string
	// TargetPath is the binary to replace. Empty means the running executable.
	TargetPath string
	// Force applies the published binary even when versions match.
	Force bool
	// Out receives human-readable results.
	Out io.Writer
}

// runner holds the mutable state for a single selfupdate execution.
// It is intentionally unexported—call Run(ctx, opts) from callers.
type runner struct {
	cfg        *config.Config           // Project settings with defaults applied.
	repo       *manifest.HTTPRepository // Remote update folder access.
	targetPath string                   // Binary being replaced.
	force      bool                     // Apply even when already current.
	out        io.Writer                // Destination for result lines.
}

// Run executes the selfupdate lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "verstamp-selfupdate")

	u, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer u.cleanup(ctx)

	if err = u.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Selfupdate failed", "error", err)
		return err
	}

	return nil
}

// newRunner prepares the run and writes a marker to avoid concurrent runs.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	if IsUpdateRunningNow(ctx) {
		return nil, errUpdateAlreadyRunning
	}

	updateMarker, err := os.Create(MarkerFilename)
	if err != nil {
		return nil, err
	}

	if err = updateMarker.Close(); err != nil {
		return nil, err
	}

	u := &runner{
		force: opts.Force,
		out:   opts.Out,
	}

	if u.out == nil {
		u.out = os.Stdout
	}

	u.cfg, err = config.LoadIfPresent(opts.ConfigPath)
	if err != nil {
		return u, fmt.Errorf("load settings: %w", err)
	}

	updateFolder := opts.UpdateFolder
	if updateFolder == "" {
		updateFolder = u.cfg.UpdateFolder
	}

	if updateFolder == "" {
		return u, errUpdateFolderRequired
	}

	u.repo, err = manifest.NewHTTPRepository(updateFolder, u.cfg.Timeout)
	if err != nil {
		return u, err
	}

	u.targetPath = opts.TargetPath
	if u.targetPath == "" {
		if u.targetPath, err = os.Executable(); err != nil {
			return u, fmt.Errorf("locate running executable: %w", err)
		}
	}

	return u, nil
}

// run executes the workflow for this runner instance:
// 1) Fetch the remote manifest.
// 2) Compare the published version with the running one.
// 3) Download the platform artifact and verify its checksum.
// 4) Swap the binary in place.
func (u *runner) run(ctx context.Context) error {
	remote, err := u.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("download release manifest: %w", err)
	}

	current := version.Current()
	if !u.force && !release.IsNewer(remote.Version, current) {
		logger.InfoKV(ctx, "No update required",
			"local", current, "remote", remote.Version)
		fmt.Fprintf(u.out, "already up to date: %s\n", current)

		return nil
	}

	artifactName := u.cfg.SelfArtifact
	if artifactName == "" {
		artifactName = common.ToolArtifactName()
	}

	encodedChecksum, ok := remote.Artifacts[artifactName]
	if !ok {
		return fmt.Errorf("%s: %w", artifactName, errArtifactNotPublished)
	}

	checksum, err := base64.StdEncoding.DecodeString(encodedChecksum)
	if err != nil {
		return fmt.Errorf("decode checksum for %s: %w", artifactName, err)
	}

	if err = u.applyArtifact(ctx, artifactName, checksum); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Binary replaced",
		"target", u.targetPath, "version", remote.Version)
	fmt.Fprintf(u.out, "updated %s: %s -> %s\n", u.targetPath, current, remote.Version)

	return nil
}

// applyArtifact downloads the artifact and swaps the target binary using
// go-update with checksum validation.
func (u *runner) applyArtifact(ctx context.Context, artifactName string, checksum []byte) error {
	body, err := u.repo.FetchArtifact(ctx, artifactName)
	if err != nil {
		return fmt.Errorf("download %s: %w", artifactName, err)
	}

	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read %s: %w", artifactName, err)
	}

	logger.Debug(ctx, "Applying update")

	options := &goupdate.Options{
		TargetPath: u.targetPath,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	dataReader := bytes.NewReader(data)
	if err = goupdate.Apply(dataReader, *options); err != nil {
		return err
	}

	oldFileName := u.targetPath + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

// cleanup removes the running marker.
func (u *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	logger.Info(ctx, "The selfupdate has been stopped")
}
