package service

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/models"
)

func newTestFS(t *testing.T) (afero.Fs, FileSystemService) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/home/u/docs", 0o755))
	require.NoError(t, fsys.MkdirAll("/home/u/.cache", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/b.txt", []byte("bb"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/a.enc", []byte("a"), 0o600))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/.hidden", nil, 0o600))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/photos.enc.tmp-123", nil, 0o600))
	return fsys, NewFileSystemService(fsys, logger.Nop())
}

func TestFileSystemService_List(t *testing.T) {
	_, svc := newTestFS(t)

	entries, err := svc.List(context.Background(), "/home/u")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"docs", "a.enc", "b.txt"}, names)

	assert.True(t, entries[0].IsDir)
	assert.True(t, entries[1].IsContainer())
	assert.False(t, entries[2].IsContainer())
	assert.Equal(t, int64(2), entries[2].Size)
	assert.Equal(t, "/home/u/b.txt", entries[2].Path)
}

func TestFileSystemService_ListMissing(t *testing.T) {
	_, svc := newTestFS(t)

	_, err := svc.List(context.Background(), "/nope")
	assert.ErrorIs(t, err, models.ErrIO)
}

func TestFileSystemService_CreateFolder(t *testing.T) {
	fsys, svc := newTestFS(t)

	p, err := svc.CreateFolder(context.Background(), "/home/u", " new ")
	require.NoError(t, err)
	assert.Equal(t, "/home/u/new", p)

	ok, err := afero.DirExists(fsys, p)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := svc.CreateFolder(context.Background(), "/home/u", name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}

	_, err = svc.CreateFolder(context.Background(), "/home/u", "docs")
	assert.ErrorIs(t, err, ErrOutputExists)
}
