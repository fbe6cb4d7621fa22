// Package version resolves the single best version string for a binary from
// a prioritized chain of build-time and runtime signals.
//
// The signals live in a BuildContext: an explicit ldflags injection, the
// module version and VCS revision recorded by the Go toolchain, a describe
// string substituted at archive-export time, and a compiled-in fallback.
// Resolve evaluates them in that order and returns the first trustworthy
// value; it is pure and total, so callers may cache the result freely.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// ldflags (`verstamp ldflags` prints the exact argument) and feed the
// process-wide context returned by CurrentContext.
package version
