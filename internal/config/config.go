package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds project settings shared by the verstamp subcommands.
type Config struct {
	// UpdateFolder is the URL where release manifests and artifacts are hosted.
	UpdateFolder string `yaml:"update_folder,omitempty"`
	// TagMatch restricts git describe to tags matching this glob.
	TagMatch string `yaml:"tag_match"`
	// VersionPackage is the import path of the package holding the
	// link-time version variables. Empty means <module>/internal/version.
	VersionPackage string `yaml:"version_package,omitempty"`
	// Artifacts lists the files published by a release.
	Artifacts []string `yaml:"artifacts,omitempty"`
	// SelfArtifact overrides the platform-derived artifact name used when
	// publishing and self-updating the verstamp binary.
	SelfArtifact string `yaml:"self_artifact,omitempty"`
	// StateFile is the path to the JSON file caching update check results.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for network and git operations.
	Timeout time.Duration `yaml:"timeout"`
	// CheckInterval is how long a cached update check result stays fresh.
	CheckInterval time.Duration `yaml:"check_interval"`
	// AllowShallow permits trusting describe output from a shallow checkout.
	AllowShallow bool `yaml:"allow_shallow,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for project settings.
	DefaultConfigFilename = ".verstamp.yaml"

	// DefaultStateFilename is the default filename for the check state cache.
	DefaultStateFilename = ".verstamp-state.json"

	// DefaultTagMatch keeps describe focused on release tags.
	DefaultTagMatch = "v*"

	// DefaultTimeout is the default duration for network and git operations.
	DefaultTimeout = 5 * time.Second

	// DefaultCheckInterval is the default freshness window for cached checks.
	DefaultCheckInterval = 24 * time.Hour

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadIfPresent reads configuration when the file exists and falls back to
// defaults when it does not. Commands that work without a settings file use
// this so a bare checkout still gets sensible behavior.
func LoadIfPresent(path string) (*Config, error) {
	lookupPath := path
	if lookupPath == "" {
		lookupPath = DefaultConfigFilename
	}

	if _, err := os.Stat(filepath.Clean(lookupPath)); err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			if validateErr := Validate(cfg); validateErr != nil {
				return nil, validateErr
			}

			return cfg, nil
		}

		return nil, fmt.Errorf("stat settings: %w", err)
	}

	return Load(lookupPath)
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks field formatting. No field is
// universally required; commands that need the update folder verify its
// presence themselves.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.TagMatch == "" {
		cfg.TagMatch = DefaultTagMatch
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}

	if cfg.UpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.UpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}
