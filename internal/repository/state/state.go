package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/domain/release"
)

// Repository defines persistence operations for the update check state.
type Repository interface {
	Load(ctx context.Context) (*release.CheckState, error)
	Save(ctx context.Context, state *release.CheckState) error
}

// FileRepository persists the check state to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("check state not found")

// errStateIsNotSet is returned when a nil state is saved.
var errStateIsNotSet = errors.New("check state is not set")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the check state from disk.
func (r *FileRepository) Load(_ context.Context) (*release.CheckState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state release.CheckState
	if err = json.Unmarshal(contents, &state); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return &state, nil
}

// Save writes the check state to disk.
func (r *FileRepository) Save(_ context.Context, state *release.CheckState) error {
	if state == nil {
		return errStateIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
