package describe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/verstamp/internal/config"
)

// fakeGit implements gitRunner with canned answers and call accounting.
type fakeGit struct {
	describe      string
	describeErr   error
	revision      string
	revisionErr   error
	shallow       bool
	shallowErr    error
	describeCalls int
}

func (f *fakeGit) Describe(_ context.Context, _ string) (string, error) {
	f.describeCalls++

	return f.describe, f.describeErr
}

func (f *fakeGit) Revision(_ context.Context) (string, error) {
	return f.revision, f.revisionErr
}

func (f *fakeGit) IsShallow(_ context.Context) (bool, error) {
	return f.shallow, f.shallowErr
}

// newTestCollector wires a collector around a fake git runner.
func newTestCollector(git gitRunner, allowShallow bool) *collector {
	return &collector{
		cfg:          &config.Config{},
		git:          git,
		match:        "v*",
		allowShallow: allowShallow,
	}
}

// TestCollect_FullHistory verifies describe and revision flow into the snapshot.
func TestCollect_FullHistory(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		describe: "v1.2.1-4-gfa2d305",
		revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
	}

	snapshot, err := newTestCollector(git, false).collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1.2.1-4-gfa2d305", snapshot.Describe)
	require.Equal(t, git.revision, snapshot.Revision)
	require.False(t, snapshot.Shallow)
}

// TestCollect_ShallowSuppressesDescribe verifies a shallow checkout keeps the
// revision but never even asks git for a describe string.
func TestCollect_ShallowSuppressesDescribe(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		describe: "v1.2.3",
		revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
		shallow:  true,
	}

	snapshot, err := newTestCollector(git, false).collect(context.Background())
	require.NoError(t, err)
	require.Empty(t, snapshot.Describe)
	require.Equal(t, git.revision, snapshot.Revision)
	require.True(t, snapshot.Shallow)
	require.Zero(t, git.describeCalls)
}

// TestCollect_ShallowAllowed verifies the override trusts describe output.
func TestCollect_ShallowAllowed(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		describe: "v1.2.3",
		revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
		shallow:  true,
	}

	snapshot, err := newTestCollector(git, true).collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1.2.3", snapshot.Describe)
	require.True(t, snapshot.Shallow)
}

// TestCollect_GitErrorsPropagate verifies failures are wrapped, not swallowed.
func TestCollect_GitErrorsPropagate(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("not a git repository")

	_, err := newTestCollector(&fakeGit{shallowErr: wantErr}, false).collect(context.Background())
	require.ErrorIs(t, err, wantErr)

	_, err = newTestCollector(&fakeGit{revisionErr: wantErr}, false).collect(context.Background())
	require.ErrorIs(t, err, wantErr)

	_, err = newTestCollector(&fakeGit{describeErr: wantErr}, false).collect(context.Background())
	require.ErrorIs(t, err, wantErr)
}

// TestRunDescribe_PrintsVersion verifies the describe output lands on the writer.
func TestRunDescribe_PrintsVersion(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		describe: "v1.2.3",
		revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
	}

	var out bytes.Buffer

	err := newTestCollector(git, false).runDescribe(context.Background(), &out)
	require.NoError(t, err)
	require.Equal(t, "v1.2.3\n", out.String())
}

// TestRunDescribe_ShallowFails verifies the strict command errors on a
// shallow checkout instead of printing a wrong version.
func TestRunDescribe_ShallowFails(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		describe: "v1.2.3",
		revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
		shallow:  true,
	}

	var out bytes.Buffer

	err := newTestCollector(git, false).runDescribe(context.Background(), &out)
	require.ErrorIs(t, err, errNoTrustedDescribe)
	require.Empty(t, out.String())
}

// TestRunLDFlags_EmitsAllFlags verifies the full flag line for a healthy checkout.
func TestRunLDFlags_EmitsAllFlags(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		describe: "v1.2.3",
		revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
	}

	var out bytes.Buffer

	err := newTestCollector(git, false).
		runLDFlags(context.Background(), "example.com/widget/internal/version", &out)
	require.NoError(t, err)

	line := strings.TrimSuffix(out.String(), "\n")
	require.Contains(t, line, "-X example.com/widget/internal/version.Version=v1.2.3")
	require.Contains(t, line, "-X example.com/widget/internal/version.Commit=fa2d305c1b4e")
	require.NotContains(t, line, ".Commit="+git.revision)
	require.Contains(t, line, "-X example.com/widget/internal/version.BuildTime=")

	// The build time must parse as RFC 3339 UTC.
	fields := strings.Fields(line)
	stamp := fields[len(fields)-1]
	stamp = stamp[strings.Index(stamp, "=")+1:]

	parsed, err := time.Parse(time.RFC3339, stamp)
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Location())
}

// TestRenderFlags_SuppressedDescribe verifies the version flag is omitted
// while commit and build time still go in.
func TestRenderFlags_SuppressedDescribe(t *testing.T) {
	t.Parallel()

	snapshot := &Snapshot{
		Revision: "fa2d305c1b4e9d0a7c6b5a4f3e2d1c0b9a8f7e6d",
		Shallow:  true,
	}

	line := renderFlags(snapshot, "example.com/widget/internal/version", time.Now())
	require.NotContains(t, line, ".Version=")
	require.Contains(t, line, ".Commit=fa2d305c1b4e")
	require.Contains(t, line, ".BuildTime=")
}

// TestResolveVersionPackage covers the precedence chain down to go.mod parsing.
func TestResolveVersionPackage(t *testing.T) {
	t.Parallel()

	goModPath := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(goModPath,
		[]byte("module example.com/widget\n\ngo 1.25\n"), 0o600))

	// Explicit option wins over everything.
	c := newTestCollector(&fakeGit{}, false)
	got, err := c.resolveVersionPackage(&Options{VersionPackage: "example.com/widget/pkg/buildmeta"})
	require.NoError(t, err)
	require.Equal(t, "example.com/widget/pkg/buildmeta", got)

	// Settings win over go.mod.
	c.cfg.VersionPackage = "example.com/widget/internal/meta"
	got, err = c.resolveVersionPackage(&Options{GoModPath: goModPath})
	require.NoError(t, err)
	require.Equal(t, "example.com/widget/internal/meta", got)

	// go.mod derivation appends the conventional package.
	c.cfg.VersionPackage = ""
	got, err = c.resolveVersionPackage(&Options{GoModPath: goModPath})
	require.NoError(t, err)
	require.Equal(t, "example.com/widget/internal/version", got)
}

// TestResolveVersionPackage_BadGoMod verifies a file without a module path fails.
func TestResolveVersionPackage_BadGoMod(t *testing.T) {
	t.Parallel()

	goModPath := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(goModPath, []byte("go 1.25\n"), 0o600))

	c := newTestCollector(&fakeGit{}, false)

	_, err := c.resolveVersionPackage(&Options{GoModPath: goModPath})
	require.ErrorIs(t, err, errModulePathMissing)
}
