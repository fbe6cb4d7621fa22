//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestArtifactName checks platform-specific naming including the Windows extension.
func TestArtifactName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "verstamp_linux_amd64", ArtifactName("linux", "amd64"))
	require.Equal(t, "verstamp_darwin_arm64", ArtifactName("darwin", "arm64"))
	require.Equal(t, "verstamp_windows_amd64.exe", ArtifactName("windows", "amd64"))
}

// TestToolArtifactName verifies the current platform is embedded in the name.
func TestToolArtifactName(t *testing.T) {
	t.Parallel()

	name := ToolArtifactName()
	require.True(t, strings.HasPrefix(name, ToolName+"_"))
	require.Contains(t, name, runtime.GOOS)
	require.Contains(t, name, runtime.GOARCH)
}

// TestToolExecutableName verifies the base name stays intact.
func TestToolExecutableName(t *testing.T) {
	t.Parallel()

	require.True(t, strings.HasPrefix(ToolExecutableName(), ToolName))
}
