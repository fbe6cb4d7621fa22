// Package release prepares the manifest and artifact set consumed by the
// check and selfupdate commands.
//
// It resolves the release version from the checkout, computes checksums for
// the published files, records build provenance and writes the YAML manifest
// next to the staged artifacts. The resulting folder is uploaded to the
// update folder or served directly with verstamp serve.
package release
