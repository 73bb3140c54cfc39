package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/models"
)

type fileSystemService struct {
	fs     afero.Fs
	logger *logger.Logger
}

func NewFileSystemService(fsys afero.Fs, logger *logger.Logger) FileSystemService {
	return &fileSystemService{fs: fsys, logger: logger}
}

// List skips hidden entries and the engine's own temp and work files.
func (s *fileSystemService) List(ctx context.Context, dir string) ([]models.DirEntry, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.logger.Err(err).Str("func", "fileSystemService.List").Str("dir", dir).Msg("error reading folder")
		return nil, fmt.Errorf("%w: read %s: %w", models.ErrIO, dir, err)
	}

	entries := make([]models.DirEntry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") || isScratch(name) {
			continue
		}
		entries = append(entries, models.DirEntry{
			Name:    name,
			Path:    filepath.Join(dir, name),
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortStableFunc(entries, func(a, b models.DirEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

func (s *fileSystemService) CreateFolder(ctx context.Context, parent, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return "", fmt.Errorf("%w: %w: %q", models.ErrInvalidConfig, ErrInvalidName, name)
	}

	p := filepath.Join(parent, name)
	if err := s.fs.Mkdir(p, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %w: %s", models.ErrInvalidConfig, ErrOutputExists, p)
		}
		s.logger.Err(err).Str("func", "fileSystemService.CreateFolder").Str("path", p).Msg("error creating folder")
		return "", fmt.Errorf("%w: mkdir %s: %w", models.ErrIO, p, err)
	}
	return p, nil
}

// isScratch matches the staging, temp and workspace names the engine uses
// while an operation runs.
func isScratch(name string) bool {
	return strings.Contains(name, ".tmp-") || strings.Contains(name, ".enc.work-")
}
