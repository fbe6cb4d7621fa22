// Package describe gathers version facts from a git checkout and renders
// them for builds.
//
// Run prints the describe string for tagging and diagnostics. RunLDFlags
// prints the -X linker flags that stamp the facts into a binary, composed
// for shell substitution: go build -ldflags "$(verstamp ldflags)". A shallow
// checkout suppresses the describe string unless explicitly allowed, since
// truncated history makes tag distances unreliable.
package describe
