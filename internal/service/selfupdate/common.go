package selfupdate

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/verstamp/internal/logger"
	"github.com/oshokin/verstamp/internal/service/common"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// MarkerFilename marks that an update is running right now to avoid parallel execution.
	MarkerFilename = ".verstamp-update-marker"

	// DefaultFileMode is used when producing artifacts for distribution.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate artifact hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// markerLifetime is the period after which a stale update marker is reconsidered.
	markerLifetime = 30 * time.Second
)

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	hash := hasher.Sum(nil)

	return hash, nil
}

// IsUpdateRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsUpdateRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of an update marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is too old, checking for a live process")

		if otherToolProcessAlive() {
			logger.InfoKV(ctx, "Another verstamp process is alive, keeping the marker",
				"marker", MarkerFilename)

			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Update marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}

// otherToolProcessAlive reports whether a different verstamp process is running.
func otherToolProcessAlive() bool {
	processList, err := ps.Processes()
	if err != nil {
		// Assume busy when the process table cannot be read.
		return true
	}

	thisProcessID := os.Getpid()
	executable := common.ToolExecutableName()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return true
		}
	}

	return false
}
