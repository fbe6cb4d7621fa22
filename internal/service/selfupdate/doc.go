// Package selfupdate downloads and applies a published verstamp binary.
//
// It compares the version advertised by the remote release manifest with the
// running one, downloads the platform artifact, validates its checksum and
// atomically swaps the executable in place. A marker file prevents parallel
// update runs.
package selfupdate
