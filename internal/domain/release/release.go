package release

import (
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// ManifestFilename stores the release description pushed to consumers.
const ManifestFilename = "verstamp-release.yaml"

// defaultMapCapacity is the default initial capacity for maps.
const defaultMapCapacity = 16

// Builder identifies who produced a release.
type Builder struct {
	// Hostname is the machine name where the release was built.
	Hostname string `yaml:"hostname"`
	// Username is the system user who ran the release.
	Username string `yaml:"username"`
}

// Clone returns a deep copy of the builder.
func (b *Builder) Clone() *Builder {
	if b == nil {
		return nil
	}

	cloned := *b

	return &cloned
}

// Manifest contains metadata about a published release.
type Manifest struct {
	// Version is the resolved version string of this release.
	Version string `yaml:"version"`
	// Revision is the full commit hash the release was built from.
	Revision string `yaml:"revision,omitempty"`
	// BuildTime is the UTC build timestamp in RFC 3339 format.
	BuildTime string `yaml:"build_time,omitempty"`
	// BuildID uniquely identifies this release run even when the
	// version repeats across rebuilds.
	BuildID string `yaml:"build_id,omitempty"`
	// Builder records who produced the release.
	Builder *Builder `yaml:"builder,omitempty"`
	// Artifacts maps published filenames to their base64-encoded checksums.
	Artifacts map[string]string `yaml:"artifacts"`
}

// NewManifest produces a Manifest with an allocated artifact map.
func NewManifest() *Manifest {
	return &Manifest{
		Artifacts: make(map[string]string, defaultMapCapacity),
	}
}

// Clone returns a copy of the manifest to avoid leaking internal references.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}

	cloned := &Manifest{
		Version:   m.Version,
		Revision:  m.Revision,
		BuildTime: m.BuildTime,
		BuildID:   m.BuildID,
		Builder:   m.Builder.Clone(),
	}

	if m.Artifacts != nil {
		cloned.Artifacts = make(map[string]string, len(m.Artifacts))
		for name, checksum := range m.Artifacts {
			cloned.Artifacts[name] = checksum
		}
	}

	return cloned
}

// CheckState caches the outcome of the last update check.
type CheckState struct {
	// CheckedAt is when the remote manifest was last consulted.
	CheckedAt time.Time `json:"checked_at"`
	// RemoteVersion is the version the manifest advertised at that time.
	RemoteVersion string `json:"remote_version"`
	// UpdateAvailable records whether that version was newer than the
	// local one.
	UpdateAvailable bool `json:"update_available"`
}

// Clone returns a copy of the check state.
func (s *CheckState) Clone() *CheckState {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Compare orders two version strings. Semantic versions compare by semver
// rules regardless of a leading "v". A semantic version always outranks a
// string that does not parse as one, so published releases replace dev
// builds and never the other way around. Two non-semver strings fall back
// to string comparison to keep the order total. The result is -1, 0 or +1.
func Compare(a, b string) int {
	canonicalA, okA := canonicalSemver(a)
	canonicalB, okB := canonicalSemver(b)

	switch {
	case okA && okB:
		return semver.Compare(canonicalA, canonicalB)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// IsNewer reports whether candidate is strictly newer than current.
// An empty current always counts as older so first installs update.
func IsNewer(candidate, current string) bool {
	if candidate == "" {
		return false
	}

	if current == "" {
		return true
	}

	return Compare(candidate, current) > 0
}

// canonicalSemver normalizes a version to the "v"-prefixed form the semver
// package expects and reports whether it parsed.
func canonicalSemver(v string) (string, bool) {
	if v == "" {
		return "", false
	}

	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	if !semver.IsValid(v) {
		return "", false
	}

	return v, true
}
