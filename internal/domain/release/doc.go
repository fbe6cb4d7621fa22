// Package release contains core domain types for publishing and consuming
// releases.
//
// It defines Manifest (what was published), Builder (who produced it) and
// CheckState (the cached outcome of an update check) with Clone helpers to
// avoid leaking internal references, plus version ordering helpers shared
// by the check and selfupdate services.
package release
