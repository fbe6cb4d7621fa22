package version

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oshokin/verstamp/internal/archive"
	"github.com/oshokin/verstamp/internal/buildinfo"
)

var (
	// Version is the explicit version forced in by the builder, typically
	// a git describe string. It can be overridden via ldflags:
	//
	//	go build -ldflags "$(verstamp ldflags)"
	//
	// Empty means no injection happened and later sources take over.
	Version string
	// Commit is the short git SHA embedded at build time.
	Commit string
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime string
)

// fallbackVersion is the compiled-in last-resort version identifier,
// bumped manually alongside releases.
const fallbackVersion = "v0.3.1"

// BuildContext is an immutable snapshot of every version signal available
// to the running binary. All fields except StaticFallback are optional;
// empty or whitespace-only values count as absent.
type BuildContext struct {
	// LDFlagVersion is the version injected by the builder via ldflags.
	LDFlagVersion string
	// ModuleVersion is the module version recorded by the Go toolchain
	// when the binary was installed from a module proxy. The reserved
	// "(devel)" value means the toolchain knew no real version.
	ModuleVersion string
	// ModuleRevision is the VCS commit hash recorded by the toolchain.
	ModuleRevision string
	// ArchiveDescribe is the describe string substituted into the source
	// tree when a tarball was exported from a describable commit.
	ArchiveDescribe string
	// StaticFallback is the terminal, always-present version identifier.
	StaticFallback string
}

// CurrentContext assembles the build context of the running binary from the
// injected variables, the toolchain build metadata, and the embedded archive
// marker. It is cheap to call; the underlying metadata read is cached.
func CurrentContext() BuildContext {
	bi := buildinfo.Read()

	return BuildContext{
		LDFlagVersion:   Version,
		ModuleVersion:   bi.ModuleVersion,
		ModuleRevision:  bi.Revision,
		ArchiveDescribe: archive.Describe(),
		StaticFallback:  fallbackVersion,
	}
}

var (
	//nolint:gochecknoglobals // Resolution is pure, so caching the process-wide result is safe.
	currentOnce sync.Once
	//nolint:gochecknoglobals // Guarded by currentOnce.
	currentValue string
	//nolint:gochecknoglobals // Guarded by currentOnce.
	currentSource Source
)

// Current returns the resolved version of the running binary.
// The pipeline runs once per process; repeated calls return the cached value.
func Current() string {
	value, _ := CurrentSource()

	return value
}

// CurrentSource returns the resolved version of the running binary together
// with the source that produced it.
func CurrentSource() (string, Source) {
	currentOnce.Do(func() {
		currentValue, currentSource = ResolveSource(CurrentContext())
	})

	return currentValue, currentSource
}

// Short returns only the resolved version string.
func Short() string {
	return Current()
}

// Full returns a human-readable version string with commit and build time.
// The check service parses this exact format when probing deployed binaries.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Current(), ResolvedCommit(), ResolvedBuildTime())
}

// ResolvedCommit returns the best available commit identifier: the injected
// one, else the toolchain-recorded revision, else "none".
func ResolvedCommit() string {
	if c := strings.TrimSpace(Commit); c != "" {
		return c
	}

	if r := buildinfo.Read().ShortRevision(); r != "" {
		return r
	}

	return "none"
}

// ResolvedBuildTime returns the best available build timestamp: the injected
// one, else the toolchain-recorded commit time, else "unknown".
func ResolvedBuildTime() string {
	if bt := strings.TrimSpace(BuildTime); bt != "" {
		return bt
	}

	if t := buildinfo.Read().Time; t != "" {
		return t
	}

	return "unknown"
}
