package version

import (
	"strings"

	"github.com/oshokin/verstamp/internal/archive"
)

// Source identifies which build-context signal produced a resolved version.
type Source string

// Resolution sources in priority order.
const (
	// SourceLDFlags is an explicit version injected by the builder.
	SourceLDFlags Source = "ldflags"
	// SourceModule is the module version recorded by the Go toolchain.
	SourceModule Source = "module"
	// SourceArchive is a describe string substituted at archive-export time.
	SourceArchive Source = "archive"
	// SourceRevision is a bare commit hash, rendered as a degraded version.
	SourceRevision Source = "revision"
	// SourceFallback is the compiled-in last-resort identifier.
	SourceFallback Source = "fallback"
)

const (
	// develSentinel is the module system's reserved "local build, no real
	// version" marker. It must never surface as a version.
	develSentinel = "(devel)"

	// degradedPrefix marks revision-only output so an identity-only version
	// can never be mistaken for a tag or describe string.
	degradedPrefix = "dev-"

	// FallbackUnknown keeps resolution total even when the static fallback
	// itself is missing, which only happens on a hand-built context.
	FallbackUnknown = "unknown"

	// shortHashLength is the standard abbreviated git hash length.
	shortHashLength = 12
)

// TierStatus records the outcome of evaluating one resolution tier.
type TierStatus struct {
	// Source names the tier.
	Source Source
	// Value is the normalized candidate, or the produced version for
	// accepted tiers. Empty when the signal was absent.
	Value string
	// Accepted reports whether this tier produced the resolved version
	// (for the first accepted tier) or would have (for later ones).
	Accepted bool
	// Reason explains rejection, or qualifies acceptance where relevant.
	Reason string
}

// Resolve returns the best available version string for the given build
// context. It is a pure function: total, deterministic, and side-effect
// free. Sources are evaluated in priority order and the first trustworthy
// value wins; with every optional signal absent the static fallback is
// returned, so the result is never empty.
func Resolve(bc BuildContext) string {
	value, _ := ResolveSource(bc)

	return value
}

// ResolveSource resolves the version and additionally reports which source
// produced it.
func ResolveSource(bc BuildContext) (string, Source) {
	for _, tier := range Explain(bc) {
		if tier.Accepted {
			return tier.Value, tier.Source
		}
	}

	// The fallback tier always accepts; this is unreachable.
	return FallbackUnknown, SourceFallback
}

// Explain evaluates every tier of the resolution pipeline and returns the
// full trail in priority order. Resolve and ResolveSource are thin scans
// over the same trail, so the reported outcome can never disagree with the
// resolved value.
func Explain(bc BuildContext) []TierStatus {
	return []TierStatus{
		ldflagTier(strings.TrimSpace(bc.LDFlagVersion)),
		moduleTier(strings.TrimSpace(bc.ModuleVersion)),
		archiveTier(strings.TrimSpace(bc.ArchiveDescribe)),
		revisionTier(strings.TrimSpace(bc.ModuleRevision)),
		fallbackTier(strings.TrimSpace(bc.StaticFallback)),
	}
}

// ldflagTier accepts any non-empty injected value: an explicit override by
// whoever built the binary always wins.
func ldflagTier(value string) TierStatus {
	if value == "" {
		return TierStatus{Source: SourceLDFlags, Reason: "not injected at build time"}
	}

	return TierStatus{Source: SourceLDFlags, Value: value, Accepted: true}
}

// moduleTier accepts a toolchain-recorded module version unless it is the
// reserved sentinel, which means "local build, version unknown".
func moduleTier(value string) TierStatus {
	switch {
	case value == "":
		return TierStatus{Source: SourceModule, Reason: "no module version recorded"}
	case value == develSentinel:
		return TierStatus{Source: SourceModule, Value: value, Reason: "local build sentinel"}
	default:
		return TierStatus{Source: SourceModule, Value: value, Accepted: true}
	}
}

// archiveTier accepts a substituted describe string. A value still carrying
// the literal template means the export substitution never ran and the
// content is not data.
func archiveTier(value string) TierStatus {
	switch {
	case value == "":
		return TierStatus{Source: SourceArchive, Reason: "no archive substitution"}
	case archive.IsPlaceholder(value):
		return TierStatus{Source: SourceArchive, Value: value, Reason: "unexpanded substitution template"}
	default:
		return TierStatus{Source: SourceArchive, Value: value, Accepted: true}
	}
}

// revisionTier degrades a bare commit hash into a clearly-marked
// non-semantic version: build identity is still traceable even when the
// version is unknown.
func revisionTier(value string) TierStatus {
	if value == "" {
		return TierStatus{Source: SourceRevision, Reason: "no revision recorded"}
	}

	if len(value) > shortHashLength {
		value = value[:shortHashLength]
	}

	return TierStatus{
		Source:   SourceRevision,
		Value:    degradedPrefix + value,
		Accepted: true,
		Reason:   "commit identity only",
	}
}

// fallbackTier always accepts. An empty static fallback violates the build
// context invariant, so totality is preserved with a compiled-in constant.
func fallbackTier(value string) TierStatus {
	if value == "" {
		return TierStatus{
			Source:   SourceFallback,
			Value:    FallbackUnknown,
			Accepted: true,
			Reason:   "static fallback missing",
		}
	}

	return TierStatus{Source: SourceFallback, Value: value, Accepted: true}
}
