// Package gitdescribe runs git queries against a working tree to gather
// build-time version facts: the describe string, the HEAD revision, and
// whether the checkout is shallow.
//
// The package is plumbing only. Deciding what to do with a shallow checkout
// or a missing repository belongs to the services that call it.
package gitdescribe
