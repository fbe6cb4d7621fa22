package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/verstamp/internal/archive"
	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/logger"
)

// Options contains inputs for the init entry point.
type Options struct {
	// ConfigPath is where the settings file is written. Empty means
	// Dir/.verstamp.yaml.
	ConfigPath string
	// Dir is the project root to scaffold. Empty means the current directory.
	Dir string
	// UpdateFolder seeds the settings file when non-empty.
	UpdateFolder string
	// VersionDir is the package directory receiving the version file and
	// the archive marker, relative to Dir.
	VersionDir string
	// Force overwrites scaffolded files that already exist.
	Force bool
}

const (
	// DefaultVersionDir hosts the scaffolded version package.
	DefaultVersionDir = "internal/version"

	// versionFilename is the scaffolded Go file.
	versionFilename = "version.go"

	// gitattributesFilename activates export-subst for the marker.
	gitattributesFilename = ".gitattributes"

	// directoryPermissions is used for created package directories.
	directoryPermissions os.FileMode = 0o755

	// scaffoldFilePermissions keeps scaffolded sources world-readable.
	scaffoldFilePermissions os.FileMode = 0o644
)

// versionTemplate is the version package scaffolded into user projects.
// It reads the same sources in the same order as verstamp itself: linker
// variables, module build info, the archive marker, then a commit-derived
// dev fallback.
const versionTemplate = `package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

// Populated at build time: go build -ldflags "$(verstamp ldflags)".
var (
	Version   string
	Commit    string
	BuildTime string
)

// describe.txt carries a git describe string inside git archive exports.
//
//go:embed describe.txt
var archiveDescribe string

// Current resolves the best available version for this binary.
func Current() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
			return v
		}
	}

	if v := strings.TrimSpace(archiveDescribe); v != "" && !strings.HasPrefix(v, "$Format") {
		return v
	}

	if revision := commitRevision(); revision != "" {
		return "dev-" + revision
	}

	return "v0.0.0-dev"
}

// commitRevision returns a short commit hash from the linker variable or
// the embedded VCS metadata.
func commitRevision() string {
	revision := strings.TrimSpace(Commit)

	if revision == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					revision = setting.Value
					break
				}
			}
		}
	}

	if len(revision) > 12 {
		revision = revision[:12]
	}

	return revision
}
`

// scaffolder writes project files for a single init execution.
// It is unexported—call Run(ctx, opts) from callers.
type scaffolder struct {
	dir          string // Project root receiving the files.
	configPath   string // Settings file destination.
	updateFolder string // Optional update folder URL for the settings.
	versionDir   string // Version package directory relative to dir.
	force        bool   // Overwrite existing files when set.
}

// Run scaffolds a project for version stamping: the settings file, a
// version package with an embedded archive marker, and the .gitattributes
// rule that makes git archive substitute the marker.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "verstamp-init")

	s := newScaffolder(opts)

	if err := s.writeSettings(ctx); err != nil {
		return err
	}

	if err := s.writeVersionPackage(ctx); err != nil {
		return err
	}

	if err := s.ensureAttributesRule(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Project scaffolding completed")

	return nil
}

// newScaffolder applies option defaults.
func newScaffolder(opts *Options) *scaffolder {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(dir, config.DefaultConfigFilename)
	}

	versionDir := opts.VersionDir
	if versionDir == "" {
		versionDir = DefaultVersionDir
	}

	return &scaffolder{
		dir:          dir,
		configPath:   configPath,
		updateFolder: opts.UpdateFolder,
		versionDir:   versionDir,
		force:        opts.Force,
	}
}

// writeSettings creates the settings file with defaults filled in.
func (s *scaffolder) writeSettings(ctx context.Context) error {
	if fileExists(s.configPath) && !s.force {
		logger.InfoKV(ctx, "Settings file already exists, skipping", "path", s.configPath)
		return nil
	}

	cfg := &config.Config{
		UpdateFolder: s.updateFolder,
	}

	if err := config.Save(s.configPath, cfg); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	logger.InfoKV(ctx, "Created settings file", "path", s.configPath)

	return nil
}

// writeVersionPackage creates the version source file and its archive marker.
func (s *scaffolder) writeVersionPackage(ctx context.Context) error {
	packageDir := filepath.Join(s.dir, s.versionDir)
	if err := os.MkdirAll(packageDir, directoryPermissions); err != nil {
		return fmt.Errorf("create version package folder: %w", err)
	}

	markerPath := filepath.Join(packageDir, archive.DefaultMarkerName)
	if err := s.writeScaffoldFile(ctx, markerPath, archive.MarkerContent()); err != nil {
		return err
	}

	packageName := filepath.Base(s.versionDir)
	contents := versionTemplate

	if packageName != "version" {
		contents = strings.Replace(contents, "package version", "package "+packageName, 1)
	}

	return s.writeScaffoldFile(ctx, filepath.Join(packageDir, versionFilename), contents)
}

// ensureAttributesRule appends the export-subst rule when it is missing.
func (s *scaffolder) ensureAttributesRule(ctx context.Context) error {
	markerRelPath := filepath.ToSlash(filepath.Join(s.versionDir, archive.DefaultMarkerName))
	rule := archive.AttributeLine(markerRelPath)
	attributesPath := filepath.Join(s.dir, gitattributesFilename)

	contents, err := os.ReadFile(filepath.Clean(attributesPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", gitattributesFilename, err)
	}

	for _, line := range strings.Split(string(contents), "\n") {
		if strings.TrimSpace(line) == rule {
			logger.InfoKV(ctx, "Attributes rule already present, skipping", "rule", rule)
			return nil
		}
	}

	updated := string(contents)
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}

	updated += rule + "\n"

	if err = os.WriteFile(attributesPath, []byte(updated), scaffoldFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", gitattributesFilename, err)
	}

	logger.InfoKV(ctx, "Added attributes rule", "rule", rule)

	return nil
}

// writeScaffoldFile writes one file unless it already exists.
func (s *scaffolder) writeScaffoldFile(ctx context.Context, path, contents string) error {
	if fileExists(path) && !s.force {
		logger.InfoKV(ctx, "File already exists, skipping", "path", path)
		return nil
	}

	if err := os.WriteFile(path, []byte(contents), scaffoldFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.InfoKV(ctx, "Created file", "path", path)

	return nil
}

// fileExists reports whether the path points at an existing file.
func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
