// Package manifest implements storage for the release Manifest.
//
// The FileRepository reads and writes the manifest as YAML on disk and the
// HTTPRepository fetches it from an update folder served over HTTP. Both
// satisfy the Repository interface that the check and selfupdate services
// depend on.
package manifest
