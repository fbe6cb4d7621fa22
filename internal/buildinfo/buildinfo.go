package buildinfo

import (
	"runtime/debug"
	"sync"
)

// shortRevisionLength is the standard abbreviated git hash length.
const shortRevisionLength = 12

// Info is the build metadata the Go toolchain embedded into the binary.
// Zero-value string fields mean the toolchain provided nothing for them.
type Info struct {
	// GoVersion is the Go toolchain version used for the build.
	GoVersion string
	// ModuleVersion is the main module version as resolved by the module
	// system, e.g. "v1.2.3" for `go install tool@v1.2.3`. Local builds
	// report the reserved "(devel)" sentinel instead of a real version.
	ModuleVersion string
	// Revision is the full VCS commit hash the binary was built from.
	Revision string
	// Time is the commit timestamp in RFC3339 format.
	Time string
	// Modified reports whether the working tree had uncommitted changes.
	Modified bool
}

var (
	//nolint:gochecknoglobals // Build metadata is immutable per process and read once.
	readOnce sync.Once
	//nolint:gochecknoglobals // Guarded by readOnce.
	cached Info
)

// Read returns the build metadata embedded into the running binary.
// The underlying lookup happens once per process; repeated calls are free.
func Read() Info {
	readOnce.Do(func() {
		if bi, ok := debug.ReadBuildInfo(); ok {
			cached = fromDebug(bi)
		}
	})

	return cached
}

// ShortRevision returns the revision abbreviated to the standard short hash
// length, or the empty string when no revision is known.
func (i Info) ShortRevision() string {
	if len(i.Revision) > shortRevisionLength {
		return i.Revision[:shortRevisionLength]
	}

	return i.Revision
}

// fromDebug extracts the fields of interest from toolchain build info.
func fromDebug(bi *debug.BuildInfo) Info {
	info := Info{
		GoVersion:     bi.GoVersion,
		ModuleVersion: bi.Main.Version,
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			info.Time = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	return info
}
