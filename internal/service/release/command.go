package release

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/verstamp/internal/config"
	domain "github.com/oshokin/verstamp/internal/domain/release"
	"github.com/oshokin/verstamp/internal/logger"
	"github.com/oshokin/verstamp/internal/repository/manifest"
	"github.com/oshokin/verstamp/internal/service/common"
	"github.com/oshokin/verstamp/internal/service/describe"
	"github.com/oshokin/verstamp/internal/service/selfupdate"
)

var (
	errUpdateInProgress = errors.New("an update is running now")
	errNoArtifacts      = errors.New("no artifacts to publish")
	errNoVersion        = errors.New("no version for the release; " +
		"tag the checkout, fetch full history or pass --version")
)

// Options contains inputs for the release entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Dir is the working tree to version. Empty means the current directory.
	Dir string
	// UpdateFolder, when non-empty, is persisted into the settings so
	// consumers of the checkout know where releases are hosted.
	UpdateFolder string
	// OutputDir is where artifacts are staged and the manifest is written.
	// Empty means the current directory.
	OutputDir string
	// Artifacts overrides the settings list when non-empty.
	Artifacts []string
	// IncludeSelf stages the running verstamp binary under its platform
	// artifact name so consumers can selfupdate from this release.
	IncludeSelf bool
	// VersionOverride skips the git queries and stamps the manifest with
	// the given version. CI pipelines use it when the version is known.
	VersionOverride string
	// AllowShallow trusts describe output from a shallow checkout.
	AllowShallow bool
}

// publisher prepares release metadata for distribution.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type publisher struct {
	// cfg holds the project settings with defaults applied.
	cfg *config.Config
	// cfgFilename is the path settings are persisted to.
	cfgFilename string
	// manifest is the release description being filled.
	manifest *domain.Manifest
	// outputDir is where staged artifacts and the manifest land.
	outputDir string
	// artifacts lists the source paths to publish.
	artifacts []string
	// includeSelf stages the running binary as a platform artifact.
	includeSelf bool
	// versionOverride bypasses the git queries when non-empty.
	versionOverride string
	// dir is the working tree queried for version facts.
	dir string
	// allowShallow trusts describe output from a shallow checkout.
	allowShallow bool
}

// Run executes the release workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "verstamp-release")

	p, err := newPublisher(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize release: %w", err)
	}

	if err = p.run(ctx); err != nil {
		return fmt.Errorf("release failed: %w", err)
	}

	logger.Info(ctx, "Release completed successfully")

	return nil
}

// newPublisher creates a publisher with the provided settings and overrides.
func newPublisher(ctx context.Context, opts *Options) (*publisher, error) {
	if selfupdate.IsUpdateRunningNow(ctx) {
		return nil, errUpdateInProgress
	}

	cfg, err := config.LoadIfPresent(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfgFilename := opts.ConfigPath
	if cfgFilename == "" {
		cfgFilename = config.DefaultConfigFilename
	}

	if opts.UpdateFolder != "" {
		cfg.UpdateFolder = opts.UpdateFolder
		if err = config.Save(cfgFilename, cfg); err != nil {
			return nil, fmt.Errorf("save settings: %w", err)
		}
	}

	artifacts := opts.Artifacts
	if len(artifacts) == 0 {
		artifacts = cfg.Artifacts
	}

	if len(artifacts) == 0 && !opts.IncludeSelf {
		return nil, errNoArtifacts
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	return &publisher{
		cfg:             cfg,
		cfgFilename:     cfgFilename,
		manifest:        domain.NewManifest(),
		outputDir:       outputDir,
		artifacts:       artifacts,
		includeSelf:     opts.IncludeSelf,
		versionOverride: opts.VersionOverride,
		dir:             opts.Dir,
		allowShallow:    opts.AllowShallow,
	}, nil
}

// run populates and writes the release manifest:
// 1) Resolve the version from the checkout or the override.
// 2) Record provenance (builder, build time, build id).
// 3) Stage artifacts and compute their checksums.
// 4) Write the manifest next to them.
func (p *publisher) run(ctx context.Context) error {
	logger.Info(ctx, "Preparing release manifest")

	if err := p.resolveVersion(ctx); err != nil {
		return err
	}

	if err := p.fillProvenance(); err != nil {
		return err
	}

	if err := p.stageArtifacts(ctx); err != nil {
		return err
	}

	if err := p.saveManifest(ctx); err != nil {
		return err
	}

	p.printNextSteps(ctx)

	return nil
}

// resolveVersion stamps the manifest from the override or the checkout.
func (p *publisher) resolveVersion(ctx context.Context) error {
	if p.versionOverride != "" {
		p.manifest.Version = p.versionOverride

		return nil
	}

	snapshot, err := describe.Collect(ctx, &describe.Options{
		ConfigPath:   p.cfgFilename,
		Dir:          p.dir,
		AllowShallow: p.allowShallow,
	})
	if err != nil {
		return fmt.Errorf("describe checkout: %w", err)
	}

	if snapshot.Describe == "" {
		return errNoVersion
	}

	p.manifest.Version = snapshot.Describe
	p.manifest.Revision = snapshot.Revision

	return nil
}

// fillProvenance records who built the release and when.
func (p *publisher) fillProvenance() error {
	builder, err := common.DetectBuilder()
	if err != nil {
		return err
	}

	p.manifest.Builder = builder
	p.manifest.BuildTime = time.Now().UTC().Format(time.RFC3339)
	p.manifest.BuildID = uuid.NewString()

	return nil
}

// stageArtifacts copies artifacts into the output folder and records checksums.
func (p *publisher) stageArtifacts(ctx context.Context) error {
	if err := os.MkdirAll(p.outputDir, selfupdate.DefaultFileMode); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	if p.includeSelf {
		executablePath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate running executable: %w", err)
		}

		selfName := p.cfg.SelfArtifact
		if selfName == "" {
			selfName = common.ToolArtifactName()
		}

		if err = p.stageArtifact(ctx, executablePath, selfName); err != nil {
			return err
		}
	}

	for _, artifactPath := range p.artifacts {
		if _, err := os.Stat(artifactPath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", artifactPath, os.ErrNotExist)
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", artifactPath, err)
		}

		if err := p.stageArtifact(ctx, artifactPath, filepath.Base(artifactPath)); err != nil {
			return err
		}
	}

	return nil
}

// stageArtifact places one file into the output folder and hashes it.
// The checksum is taken from the staged copy, which is what consumers download.
func (p *publisher) stageArtifact(ctx context.Context, sourcePath, name string) error {
	destinationPath := filepath.Join(p.outputDir, name)

	if filepath.Clean(sourcePath) != filepath.Clean(destinationPath) {
		if err := copyFile(sourcePath, destinationPath); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}

	checksum, err := selfupdate.GetFileChecksum(destinationPath)
	if err != nil {
		return err
	}

	p.manifest.Artifacts[name] = base64.StdEncoding.EncodeToString(checksum)
	logger.InfoKV(ctx, "Staged artifact", "name", name)

	return nil
}

// saveManifest writes the manifest into the output folder.
func (p *publisher) saveManifest(ctx context.Context) error {
	manifestPath := filepath.Join(p.outputDir, domain.ManifestFilename)
	logger.InfoKV(ctx, "Saving release manifest",
		"path", manifestPath, "version", p.manifest.Version)

	return manifest.NewFileRepository(manifestPath).Save(ctx, p.manifest)
}

// printNextSteps logs human-readable guidance for publishing the created files.
func (p *publisher) printNextSteps(ctx context.Context) {
	files := make([]string, 0, len(p.manifest.Artifacts)+1)
	for fileName := range p.manifest.Artifacts {
		files = append(files, fileName)
	}

	files = append(files, domain.ManifestFilename)
	sort.Strings(files)

	var builder strings.Builder

	builder.WriteString("You should upload the following files to the update folder")

	if p.cfg.UpdateFolder != "" {
		builder.WriteString(" ")
		builder.WriteString(p.cfg.UpdateFolder)
	}

	builder.WriteString(":\n")

	for i, name := range files {
		if i == 0 {
			builder.WriteString(name)
		} else {
			builder.WriteString(",\n")
			builder.WriteString(name)
		}
	}

	builder.WriteString("\nTo serve them locally, run: verstamp serve ")
	builder.WriteString(p.outputDir)

	logger.Info(ctx, builder.String())
}

// copyFile duplicates a file preserving its permission bits.
func copyFile(sourcePath, destinationPath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}

	contents, err := os.ReadFile(filepath.Clean(sourcePath))
	if err != nil {
		return err
	}

	return os.WriteFile(destinationPath, contents, info.Mode().Perm())
}
