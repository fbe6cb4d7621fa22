package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/verstamp/internal/domain/release"
)

// Repository defines read access to a release manifest.
type Repository interface {
	Load(ctx context.Context) (*release.Manifest, error)
}

var (
	// ErrNotFound is returned when no manifest has been published yet.
	ErrNotFound = errors.New("release manifest not found")

	// errManifestIsNotSet is returned when a nil manifest is saved.
	errManifestIsNotSet = errors.New("release manifest is not set")

	// errBadHTTPStatus is returned for unexpected update server responses.
	errBadHTTPStatus = errors.New("bad response status")
)

// manifestFilePermissions keeps the published manifest world-readable.
const manifestFilePermissions os.FileMode = 0o644

// FileRepository persists the release manifest as YAML on disk.
type FileRepository struct {
	// path is the filesystem location of the manifest file.
	path string
	// mu protects concurrent access to the manifest file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the manifest from disk.
func (r *FileRepository) Load(_ context.Context) (*release.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m release.Manifest
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}

// Save writes the manifest to disk.
func (r *FileRepository) Save(_ context.Context, m *release.Manifest) error {
	if m == nil {
		return errManifestIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err = os.WriteFile(r.path, data, manifestFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// HTTPRepository fetches the release manifest and artifacts from an update
// folder served over HTTP.
type HTTPRepository struct {
	// base is the parsed update folder URL.
	base *url.URL
	// client performs the requests with a bounded timeout.
	client *http.Client
}

// NewHTTPRepository creates a repository over the given update folder URL.
func NewHTTPRepository(updateFolder string, timeout time.Duration) (*HTTPRepository, error) {
	base, err := url.Parse(updateFolder)
	if err != nil {
		return nil, fmt.Errorf("parse update folder URL: %w", err)
	}

	return &HTTPRepository{
		base: base,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Load downloads and parses the remote release manifest.
func (r *HTTPRepository) Load(ctx context.Context) (*release.Manifest, error) {
	body, err := r.fetch(ctx, release.ManifestFilename)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = body.Close()
	}()

	contents, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read manifest body: %w", err)
	}

	var m release.Manifest
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}

// FetchArtifact streams a published artifact from the update folder.
// The caller owns the returned body and must close it.
func (r *HTTPRepository) FetchArtifact(ctx context.Context, name string) (io.ReadCloser, error) {
	return r.fetch(ctx, name)
}

// fetch retrieves one file from the update folder.
func (r *HTTPRepository) fetch(ctx context.Context, fileName string) (io.ReadCloser, error) {
	fileURL := *r.base
	// Use path.Join to normalize duplicate slashes when composing the URL path.
	fileURL.Path = path.Join(fileURL.Path, fileName)
	finalURL := fileURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}

	if response.StatusCode == http.StatusNotFound {
		_ = response.Body.Close()

		return nil, ErrNotFound
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return response.Body, nil
}
