package release

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestBuilderClone verifies that Clone returns a deep copy and handles nil safely.
func TestBuilderClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Builder)(nil).Clone())

	a := &Builder{
		Hostname: "build-host",
		Username: "ci",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestManifestClone verifies Clone copies fields and deep-copies the artifact map.
func TestManifestClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Manifest)(nil).Clone())

	m := &Manifest{
		Version:   "v1.2.3",
		Revision:  "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
		BuildTime: "2026-08-25T10:00:00Z",
		BuildID:   "8e9f4c1a-0b2d-4f6e-8a7c-5d3b1e9f4c1a",
		Builder: &Builder{
			Hostname: "build-host",
			Username: "ci",
		},
		Artifacts: map[string]string{
			"verstamp_linux_amd64": "c2FtcGxl",
		},
	}

	c := m.Clone()
	require.Equal(t, m, c)
	require.NotSame(t, m, c)
	require.NotSame(t, m.Builder, c.Builder)

	// Mutating the clone's map must not touch the original.
	c.Artifacts["extra"] = "x"
	require.NotContains(t, m.Artifacts, "extra")
}

// TestCheckStateClone verifies the cached check outcome copies cleanly.
func TestCheckStateClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*CheckState)(nil).Clone())

	s := &CheckState{
		CheckedAt:       time.Now().UTC().Truncate(time.Second),
		RemoteVersion:   "v1.3.0",
		UpdateAvailable: true,
	}

	c := s.Clone()
	require.Equal(t, s, c)
	require.NotSame(t, s, c)
}

// TestCompare covers semver ordering, prefix normalization and the
// string fallback for non-semver schemes.
func TestCompare(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{
			name: "patch bump",
			a:    "v1.2.3",
			b:    "v1.2.4",
			want: -1,
		},
		{
			name: "equal",
			a:    "v1.2.3",
			b:    "v1.2.3",
			want: 0,
		},
		{
			name: "major beats minor",
			a:    "v2.0.0",
			b:    "v1.9.9",
			want: 1,
		},
		{
			name: "bare version gains prefix",
			a:    "1.2.3",
			b:    "v1.2.3",
			want: 0,
		},
		{
			name: "prerelease sorts before release",
			a:    "v1.2.3-rc.1",
			b:    "v1.2.3",
			want: -1,
		},
		{
			name: "non-semver falls back to string order",
			a:    "dev-aa11",
			b:    "dev-bb22",
			want: -1,
		},
		{
			name: "semver outranks dev build",
			a:    "v0.0.1",
			b:    "dev-fa2d305c1b4e",
			want: 1,
		},
		{
			name: "dev build never outranks semver",
			a:    "dev-fa2d305c1b4e",
			b:    "v9.9.9",
			want: -1,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, Compare(tc.a, tc.b))
		})
	}
}

// TestIsNewer verifies update decisions including the first-install case.
func TestIsNewer(t *testing.T) {
	t.Parallel()

	require.True(t, IsNewer("v1.2.4", "v1.2.3"))
	require.False(t, IsNewer("v1.2.3", "v1.2.3"))
	require.False(t, IsNewer("v1.2.2", "v1.2.3"))

	// No local version means anything remote is an upgrade.
	require.True(t, IsNewer("v0.0.1", ""))

	// A published release replaces a dev build, never the reverse.
	require.True(t, IsNewer("v0.0.1", "dev-fa2d305c1b4e"))
	require.False(t, IsNewer("dev-fa2d305c1b4e", "v0.0.1"))

	// An empty remote version never triggers an update.
	require.False(t, IsNewer("", "v1.2.3"))
}
