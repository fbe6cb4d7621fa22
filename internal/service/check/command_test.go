package check

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/domain/release"
	staterepo "github.com/oshokin/verstamp/internal/repository/state"
	"github.com/oshokin/verstamp/internal/version"
)

// serveManifest starts a test update folder advertising the given version
// and returns its URL plus a hit counter.
func serveManifest(t *testing.T, versionNumber string) (string, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32

	contents, err := yaml.Marshal(&release.Manifest{Version: versionNumber})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+release.ManifestFilename {
			http.NotFound(w, r)
			return
		}

		hits.Add(1)
		_, _ = w.Write(contents)
	}))
	t.Cleanup(server.Close)

	return server.URL, &hits
}

// chdir switches the working directory to dir for the duration of the test
// and restores the previous one on cleanup. It stands in for
// (*testing.T).Chdir, which needs a newer Go than this module targets.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

// TestParseVersionOutput covers the long line, bare versions and rejects.
func TestParseVersionOutput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "long form",
			output: "version: v1.2.3, commit: fa2d305, built at: 2026-08-25T10:00:00Z\n",
			want:   "v1.2.3",
		},
		{
			name:   "bare version",
			output: "v1.2.3\n",
			want:   "v1.2.3",
		},
		{
			name:   "bare version with trailing noise lines",
			output: "v1.2.1-4-gfa2d305\nbuilt by hand\n",
			want:   "v1.2.1-4-gfa2d305",
		},
		{
			name:    "empty output",
			output:  "   \n",
			wantErr: true,
		},
		{
			name:    "prose first line",
			output:  "usage: tool [flags]\n",
			wantErr: true,
		},
		{
			name:    "long form with empty version",
			output:  "version: , commit: abc",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseVersionOutput(tc.output)
			if tc.wantErr {
				require.ErrorIs(t, err, errInvalidVersionOutput)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// TestRun_ReportsUpdateAvailable verifies the verdict and the cached state.
func TestRun_ReportsUpdateAvailable(t *testing.T) {
	chdir(t, t.TempDir())

	url, _ := serveManifest(t, "v99.99.99")

	var out strings.Builder

	err := Run(context.Background(), &Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		UpdateFolder: url,
		Out:          &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "update available: ")
	require.Contains(t, out.String(), "-> v99.99.99")

	// The outcome is cached for the next invocation.
	cached, err := staterepo.NewFileRepository(config.DefaultStateFilename).
		Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v99.99.99", cached.RemoteVersion)
	require.True(t, cached.UpdateAvailable)
}

// TestRun_UpToDate verifies the quiet verdict when nothing newer is published.
func TestRun_UpToDate(t *testing.T) {
	chdir(t, t.TempDir())

	url, _ := serveManifest(t, version.Current())

	var out strings.Builder

	err := Run(context.Background(), &Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		UpdateFolder: url,
		Out:          &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "up to date: "+version.Current())
}

// TestRun_UsesCache skips the network while the cached result is fresh.
func TestRun_UsesCache(t *testing.T) {
	chdir(t, t.TempDir())

	url, hits := serveManifest(t, "v99.99.99")

	require.NoError(t, staterepo.NewFileRepository(config.DefaultStateFilename).
		Save(context.Background(), &release.CheckState{
			CheckedAt:       time.Now().UTC(),
			RemoteVersion:   "v88.88.88",
			UpdateAvailable: true,
		}))

	var out strings.Builder

	err := Run(context.Background(), &Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		UpdateFolder: url,
		Out:          &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "v88.88.88")
	require.Contains(t, out.String(), "(cached)")
	require.Zero(t, hits.Load())
}

// TestRun_StaleCacheRefetches goes back to the network once the cache ages out.
func TestRun_StaleCacheRefetches(t *testing.T) {
	chdir(t, t.TempDir())

	url, hits := serveManifest(t, "v99.99.99")

	require.NoError(t, staterepo.NewFileRepository(config.DefaultStateFilename).
		Save(context.Background(), &release.CheckState{
			CheckedAt:     time.Now().UTC().Add(-48 * time.Hour),
			RemoteVersion: "v88.88.88",
		}))

	var out strings.Builder

	err := Run(context.Background(), &Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		UpdateFolder: url,
		Out:          &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "v99.99.99")
	require.NotContains(t, out.String(), "(cached)")
	require.Equal(t, int32(1), hits.Load())
}

// TestRun_ForceBypassesCache refetches even with a fresh cache.
func TestRun_ForceBypassesCache(t *testing.T) {
	chdir(t, t.TempDir())

	url, hits := serveManifest(t, "v99.99.99")

	require.NoError(t, staterepo.NewFileRepository(config.DefaultStateFilename).
		Save(context.Background(), &release.CheckState{
			CheckedAt:     time.Now().UTC(),
			RemoteVersion: "v88.88.88",
		}))

	var out strings.Builder

	err := Run(context.Background(), &Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		UpdateFolder: url,
		Force:        true,
		Out:          &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "v99.99.99")
	require.Equal(t, int32(1), hits.Load())
}

// TestRun_RequiresUpdateFolder fails fast without a configured update folder.
func TestRun_RequiresUpdateFolder(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	require.ErrorIs(t, err, errUpdateFolderRequired)
}

// TestDetectBinaryVersion queries executables through both supported spellings.
func TestDetectBinaryVersion(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()

	subcommandTool := filepath.Join(dir, "subcommand-tool")
	require.NoError(t, os.WriteFile(subcommandTool, []byte(
		"#!/bin/sh\n"+
			"if [ \"$1\" = \"version\" ]; then\n"+
			"  echo \"version: v1.0.0, commit: fa2d305, built at: 2026-08-25T10:00:00Z\"\n"+
			"else\n"+
			"  exit 1\n"+
			"fi\n"), 0o755))

	got, err := detectBinaryVersion(context.Background(), subcommandTool)
	require.NoError(t, err)
	require.Equal(t, "v1.0.0", got)

	flagTool := filepath.Join(dir, "flag-tool")
	require.NoError(t, os.WriteFile(flagTool, []byte(
		"#!/bin/sh\n"+
			"if [ \"$1\" = \"--version\" ]; then\n"+
			"  echo v2.3.4\n"+
			"else\n"+
			"  exit 1\n"+
			"fi\n"), 0o755))

	got, err = detectBinaryVersion(context.Background(), flagTool)
	require.NoError(t, err)
	require.Equal(t, "v2.3.4", got)

	_, err = detectBinaryVersion(context.Background(), filepath.Join(dir, "missing-tool"))
	require.Error(t, err)
}
