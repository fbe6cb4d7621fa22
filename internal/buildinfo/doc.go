// Package buildinfo reads the build metadata the Go toolchain embeds into
// binaries (module version, VCS revision, commit time, dirty flag).
//
// The lookup runs once per process and the result is cached; callers treat
// the returned Info as an opaque, read-only snapshot. The version package
// feeds these fields into the resolution pipeline.
package buildinfo
