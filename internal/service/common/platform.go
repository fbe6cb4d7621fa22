//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"runtime"
	"strings"
)

// ToolName is the base name of the verstamp executable.
const ToolName = "verstamp"

// ExecutableExtension returns ".exe" on Windows and "" elsewhere.
func ExecutableExtension() string {
	return executableExtensionFor(runtime.GOOS)
}

// ToolExecutableName returns the verstamp executable name for the current platform.
func ToolExecutableName() string {
	return ToolName + ExecutableExtension()
}

// ArtifactName composes the published filename of the verstamp binary for a
// platform, e.g. "verstamp_linux_amd64" or "verstamp_windows_amd64.exe".
func ArtifactName(goos, goarch string) string {
	return fmt.Sprintf("%s_%s_%s%s", ToolName, goos, goarch, executableExtensionFor(goos))
}

// ToolArtifactName returns the published binary name for the current platform.
func ToolArtifactName() string {
	return ArtifactName(runtime.GOOS, runtime.GOARCH)
}

func executableExtensionFor(goos string) string {
	if strings.Contains(strings.ToLower(goos), "windows") {
		return ".exe"
	}

	return ""
}
