//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/verstamp/internal/domain/release"
)

// DetectBuilder gathers host and user information for the release audit trail.
func DetectBuilder() (*release.Builder, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &release.Builder{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
