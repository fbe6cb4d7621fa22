package version

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand attaches a `version` subcommand to the provided
// root command. It prints detailed build info; with --explain it also renders
// how every resolution source was evaluated.
func AttachCobraVersionCommand(root *cobra.Command) {
	var explain bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long: "Print detailed version information including build metadata, commit hash, and build timestamp. " +
			"The version is resolved from build-time injection, toolchain build info, and the archive " +
			"substitution marker, in that order. Use --explain to see the full resolution trail.",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, Full())

			if explain {
				renderTrail(out)
			}
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "show how each version source was evaluated")

	root.AddCommand(cmd)
}

// renderTrail writes the tier-by-tier resolution trail, marking the winner.
func renderTrail(w io.Writer) {
	_, winner := CurrentSource()

	for _, tier := range Explain(CurrentContext()) {
		marker := " "
		if tier.Accepted && tier.Source == winner {
			marker = "*"
			// Only the first accepted tier wins; stop marking afterwards.
			winner = ""
		}

		_, _ = fmt.Fprintf(w, "%s %-9s %s\n", marker, tier.Source, renderTier(tier))
	}
}

// renderTier formats a single tier outcome for human reading.
func renderTier(tier TierStatus) string {
	switch {
	case tier.Accepted && tier.Reason != "":
		return fmt.Sprintf("%s (%s)", tier.Value, tier.Reason)
	case tier.Accepted:
		return tier.Value
	case tier.Value != "":
		return fmt.Sprintf("rejected %q: %s", tier.Value, tier.Reason)
	default:
		return "absent: " + tier.Reason
	}
}
