package gitdescribe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds every git invocation to avoid hanging builds.
const commandTimeout = 10 * time.Second

// errEmptyOutput indicates git succeeded but printed nothing usable.
var errEmptyOutput = errors.New("git produced no output")

// execFunc runs one git command in a directory and returns trimmed stdout.
// Tests substitute it to avoid depending on a git binary or checkout.
type execFunc func(ctx context.Context, dir string, args ...string) (string, error)

// Runner queries a git checkout for version information.
type Runner struct {
	// dir is the working tree the commands run against.
	dir string
	// run executes git commands; replaceable for tests.
	run execFunc
}

// New returns a Runner operating on the given working tree.
// An empty dir means the current directory.
func New(dir string) *Runner {
	return &Runner{
		dir: dir,
		run: runGit,
	}
}

// newWithExec builds a Runner with a custom command executor. Test helper.
func newWithExec(dir string, run execFunc) *Runner {
	return &Runner{
		dir: dir,
		run: run,
	}
}

// Describe returns the `git describe --tags --always --dirty` output:
// the nearest tag when HEAD is exactly tagged, a tag-distance-hash triple
// otherwise, or a bare short hash when the repository has no tags at all.
// A non-empty match restricts candidate tags to the given glob.
func (r *Runner) Describe(ctx context.Context, match string) (string, error) {
	args := []string{"describe", "--tags", "--always", "--dirty"}
	if match != "" {
		args = append(args, "--match", match)
	}

	output, err := r.run(ctx, r.dir, args...)
	if err != nil {
		return "", err
	}

	if output == "" {
		return "", errEmptyOutput
	}

	return output, nil
}

// Revision returns the full commit hash of HEAD.
func (r *Runner) Revision(ctx context.Context) (string, error) {
	output, err := r.run(ctx, r.dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}

	if output == "" {
		return "", errEmptyOutput
	}

	return output, nil
}

// IsShallow reports whether the checkout has truncated history. Describe
// output from a shallow clone can look plausible while naming the wrong tag,
// so callers must not trust it without an explicit override.
func (r *Runner) IsShallow(ctx context.Context) (bool, error) {
	output, err := r.run(ctx, r.dir, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return false, err
	}

	return output == "true", nil
}

// runGit executes the real git binary with a bounded timeout.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return strings.TrimSpace(string(output)), nil
}
