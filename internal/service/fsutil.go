package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/models"
)

const bufferSize = 256 << 10

// target resolves path and stats it without following a final symlink.
func (e *folderEngine) target(path string) (string, os.FileInfo, error) {
	if path == "" {
		return "", nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, ErrTargetNotFound)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, err)
	}

	info, err := lstat(e.fs, abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("%w: %w: %s", models.ErrInvalidConfig, ErrTargetNotFound, abs)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: stat %s: %w", models.ErrIO, abs, err)
	}
	return abs, info, nil
}

// ensureAbsent fails with models.ErrInvalidConfig when p exists.
func (e *folderEngine) ensureAbsent(p string) error {
	_, err := lstat(e.fs, p)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %w: %s", models.ErrInvalidConfig, ErrOutputExists, p)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("%w: stat %s: %w", models.ErrIO, p, err)
	}
}

// publish renames tmp to dst in one step. Nothing is published once ctx
// has been cancelled.
func (e *folderEngine) publish(ctx context.Context, tmp, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.ensureAbsent(dst); err != nil {
		return err
	}
	if err := e.fs.Rename(tmp, dst); err != nil {
		return fmt.Errorf("%w: rename %s: %w", models.ErrIO, tmp, err)
	}
	e.syncDir(filepath.Dir(dst))
	return nil
}

// syncDir flushes a directory entry change where the filesystem allows it.
func (e *folderEngine) syncDir(dir string) {
	d, err := e.fs.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func (e *folderEngine) removeAll(log *logger.Logger, p string) {
	if err := e.fs.RemoveAll(p); err != nil {
		log.Warn().Err(err).Str("func", "folderEngine.removeAll").Str("path", p).Msg("leftover not removed")
	}
}

func lstat(fsys afero.Fs, p string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(p)
		return info, err
	}
	return fsys.Stat(p)
}

// firstError picks the error reported for a batch of parallel tasks: the
// highest-priority kind wins, then the lowest index.
func firstError(errs []error) error {
	var best error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if best == nil || models.KindOf(err).Priority() < models.KindOf(best).Priority() {
			best = err
		}
	}
	return best
}

// lockedReaderAt serialises ReadAt for files whose implementation keeps a
// shared offset.
type lockedReaderAt struct {
	mu sync.Mutex
	r  io.ReaderAt
}

func (l *lockedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.ReadAt(p, off)
}

// segmentReader opens its file on first read and closes it at EOF, so a
// container with many segments never holds more than one open.
type segmentReader struct {
	fs   afero.Fs
	path string
	f    afero.File
	done bool
}

func (r *segmentReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	if r.f == nil {
		f, err := r.fs.Open(r.path)
		if err != nil {
			return 0, fmt.Errorf("%w: open segment: %w", models.ErrIO, err)
		}
		r.f = f
	}

	n, err := r.f.Read(p)
	if errors.Is(err, io.EOF) {
		r.done = true
		_ = r.Close()
	}
	return n, err
}

func (r *segmentReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
