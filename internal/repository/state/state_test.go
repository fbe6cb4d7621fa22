package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/verstamp/internal/domain/release"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal state.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(file)

	want := &release.CheckState{
		CheckedAt:       time.Now().UTC().Truncate(time.Second),
		RemoteVersion:   "v1.3.0",
		UpdateAvailable: true,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.RemoteVersion, got.RemoteVersion)
	require.Equal(t, want.UpdateAvailable, got.UpdateAvailable)
	require.Equal(t, want.CheckedAt.Unix(), got.CheckedAt.Unix())

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_SaveNil verifies a nil state is rejected before touching disk.
func TestFileRepository_SaveNil(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(file)

	require.ErrorIs(t, repo.Save(context.Background(), nil), errStateIsNotSet)

	_, err := os.Stat(file)
	require.True(t, os.IsNotExist(err))
}

// TestFileRepository_CorruptFile verifies malformed JSON surfaces as a decode error.
func TestFileRepository_CorruptFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	repo := NewFileRepository(file)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode state file")
}
