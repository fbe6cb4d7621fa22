package archive

import (
	_ "embed"
	"strings"
)

// describe.txt is listed in .gitattributes with the export-subst attribute.
// Inside a `git archive` export of a describable commit its content is a real
// describe string; in a plain checkout it is the unexpanded template below.
//
//go:embed describe.txt
var embedded string

const (
	// PlaceholderPrefix marks an export-subst template that was never
	// expanded. Any value still carrying it must not be trusted as data.
	PlaceholderPrefix = "$Format"

	// markerTemplate is the exact content written into marker files so git
	// substitutes a tag-based describe string at archive-export time.
	markerTemplate = "$Format:%(describe:tags)$\n"

	// DefaultMarkerName is the marker filename scaffolded into version
	// packages. It sits next to the Go file that embeds it, since go:embed
	// cannot reach outside the package directory.
	DefaultMarkerName = "describe.txt"
)

// Describe returns the raw embedded marker content with surrounding
// whitespace removed. Callers are responsible for rejecting unexpanded
// templates; the resolution pipeline does exactly that.
func Describe() string {
	return strings.TrimSpace(embedded)
}

// IsPlaceholder reports whether the value is an unexpanded export-subst
// template rather than real substitution output.
func IsPlaceholder(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), PlaceholderPrefix)
}

// MarkerContent returns the content for a fresh substitution marker file.
func MarkerContent() string {
	return markerTemplate
}

// AttributeLine returns the .gitattributes rule that activates export-subst
// for the marker at the given repository-relative path.
func AttributeLine(path string) string {
	return path + " export-subst"
}
