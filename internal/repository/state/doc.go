// Package state implements persistence for the update check state.
//
// The FileRepository stores and loads the cached check outcome as JSON on
// disk and exposes a Repository interface that the check service depends on.
package state
