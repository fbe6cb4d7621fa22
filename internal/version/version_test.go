package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.True(t, strings.HasPrefix(Full(), "version: "))
}

// TestCurrentContext_CarriesFallback checks the process context honors the invariant
// that the static fallback is always present.
func TestCurrentContext_CarriesFallback(t *testing.T) {
	t.Parallel()

	bc := CurrentContext()
	require.NotEmpty(t, bc.StaticFallback)
	require.Equal(t, Version, bc.LDFlagVersion)
}

// TestCurrent_Cached verifies repeated calls agree with each other and with the source.
func TestCurrent_Cached(t *testing.T) {
	t.Parallel()

	value, source := CurrentSource()
	require.NotEmpty(t, value)
	require.NotEmpty(t, source)
	require.Equal(t, value, Current())
	require.Equal(t, value, Current())
}

// TestResolvedCommit_NeverEmpty covers the commit fallback chain.
func TestResolvedCommit_NeverEmpty(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, ResolvedCommit())
	require.NotEmpty(t, ResolvedBuildTime())
}
