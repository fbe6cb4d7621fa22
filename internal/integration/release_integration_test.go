package integration

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/verstamp/internal/config"
	domain "github.com/oshokin/verstamp/internal/domain/release"
	"github.com/oshokin/verstamp/internal/repository/manifest"
	"github.com/oshokin/verstamp/internal/service/release"
	"github.com/oshokin/verstamp/internal/service/selfupdate"
)

// TestRelease_WritesManifest publishes two placeholder artifacts and verifies
// the manifest, the staged copies and the persisted settings.
func TestRelease_WritesManifest(t *testing.T) {
	// Setup test directory and change working directory.
	dir := t.TempDir()
	prev, _ := os.Getwd() //nolint:errcheck // Test code needs simple os.Getwd for directory change.

	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})

	// Create placeholder files expected by the release.
	for name, body := range map[string]string{
		"app.bin":  "app-contents",
		"docs.txt": "docs-contents",
	} {
		require.NoError(t, os.WriteFile(name, []byte(body), 0o644))
	}

	// Run the release with timeout context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	options := &release.Options{
		ConfigPath:      config.DefaultConfigFilename,
		UpdateFolder:    "http://localhost/updates",
		OutputDir:       "updates",
		Artifacts:       []string{"app.bin", "docs.txt"},
		VersionOverride: "v1.2.3",
	}

	require.NoError(t, release.Run(ctx, options))

	// Verify the manifest describes both artifacts with staged checksums.
	written, err := manifest.NewFileRepository(
		filepath.Join("updates", domain.ManifestFilename)).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "v1.2.3", written.Version)
	require.Len(t, written.Artifacts, 2)

	for _, name := range []string{"app.bin", "docs.txt"} {
		staged := filepath.Join("updates", name)

		_, err = os.Stat(staged)
		require.NoError(t, err)

		checksum, checksumErr := selfupdate.GetFileChecksum(staged)
		require.NoError(t, checksumErr)
		require.Equal(t, base64.StdEncoding.EncodeToString(checksum), written.Artifacts[name])
	}

	// Verify the update folder was persisted into the settings.
	cfg, err := config.Load(config.DefaultConfigFilename)
	require.NoError(t, err)
	require.Equal(t, "http://localhost/updates", cfg.UpdateFolder)
}
