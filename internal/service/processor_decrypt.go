// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-secure-folder/internal/container"
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/manifest"
	"github.com/MKhiriev/go-secure-folder/internal/workers"
	"github.com/MKhiriev/go-secure-folder/models"
)

// decrypt restores the container src. dest is empty when it has to be
// taken from the manifest name.
func (e *folderEngine) decrypt(ctx context.Context, op *Operation, src, dest string, key *crypto.Secret) error {
	dest, err := e.decryptTo(ctx, op, src, dest, key)
	if err != nil {
		return err
	}
	op.setOutput(dest)

	if !e.opts.KeepSource {
		if err := e.fs.Remove(src); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("func", "folderEngine.decrypt").Msg("output published but container not removed")
			op.setWarning(fmt.Sprintf("%s: container not removed: %v", ErrSourceNotRemoved, err))
		}
	}
	return nil
}

// decryptTo checks the header, authenticates the manifest, then decrypts
// every file into a staging path that is renamed onto dest in one step.
// Errors surface in that order: layout (CorruptManifest), key or tamper
// (AuthFailure), then per-file checksums (IntegrityMismatch).
func (e *folderEngine) decryptTo(ctx context.Context, op *Operation, src, dest string, key *crypto.Secret) (string, error) {
	log := logger.FromContext(ctx)

	op.advance(StateWalking)
	f, err := e.fs.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: open: %w", models.ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat: %w", models.ErrIO, err)
	}
	r := &lockedReaderAt{r: f}

	header, err := container.ReadHeaderAt(r, info.Size())
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	km, err := e.deriver.Derive(key, header.KeyLength, header.Salt, header.KDF)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	dec, err := container.NewDecoder(r, info.Size(), header, km)
	km.Destroy()
	if err != nil {
		return "", err
	}
	m := dec.Manifest()

	if dest == "" {
		dest = filepath.Join(filepath.Dir(src), m.Name)
		if err := e.ensureAbsent(dest); err != nil {
			return "", err
		}
		if err := e.locks.tryLock(dest); err != nil {
			return "", err
		}
		defer e.locks.unlock(dest)
	}

	files := m.Files()
	op.setTotals(int64(len(files)), m.TotalSize())
	op.advance(StateProcessing)

	staging := fmt.Sprintf("%s.tmp-%s", dest, op.ID)
	err = e.restore(ctx, op, dec, staging)
	if err == nil {
		op.advance(StateFinalizing)
		err = e.publish(ctx, staging, dest)
	}
	if err != nil {
		e.removeAll(log, staging)
		return "", err
	}
	return dest, nil
}

func (e *folderEngine) restore(ctx context.Context, op *Operation, dec *container.Decoder, staging string) error {
	m := dec.Manifest()

	if m.Kind == manifest.KindFile {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.restoreFile(dec, 0, m.File, staging); err != nil {
			return err
		}
		op.fileDone(m.File.Size)
		return nil
	}

	log := logger.FromContext(ctx)
	if err := e.fs.Mkdir(staging, 0o700); err != nil {
		return fmt.Errorf("%w: create staging: %w", models.ErrIO, err)
	}
	for _, entry := range m.Entries[1:] {
		switch entry.Kind {
		case models.EntryDir:
			if err := e.fs.Mkdir(stagedPath(staging, entry.Path), 0o700); err != nil {
				return fmt.Errorf("%w: create %s: %w", models.ErrIO, entry.Path, err)
			}
		case models.EntrySymlink:
			log.Debug().Str("path", entry.Path).Msg("symlink entry not restored")
		}
	}

	files := m.Files()
	tasks := make([]workers.Task, len(files))
	for i, entry := range files {
		tasks[i] = func(ctx context.Context) error {
			if err := e.restoreFile(dec, i, entry, stagedPath(staging, entry.Path)); err != nil {
				return err
			}
			op.fileDone(entry.Size)
			return nil
		}
	}
	if err := firstError(e.pool.RunAll(ctx, tasks)); err != nil {
		return err
	}

	// Children sort after their parent, so walking backwards fixes up the
	// deepest directories first and never locks out a pending child.
	for j := len(m.Entries) - 1; j >= 0; j-- {
		entry := m.Entries[j]
		if entry.Kind != models.EntryDir {
			continue
		}
		if err := e.applyMetadata(stagedPath(staging, entry.Path), entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *folderEngine) restoreFile(dec *container.Decoder, index int, entry models.ManifestEntry, path string) error {
	f, err := e.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", models.ErrIO, entry.Path, err)
	}

	w := bufio.NewWriterSize(f, bufferSize)
	err = dec.DecryptSegment(w, index)
	if err == nil {
		if ferr := w.Flush(); ferr != nil {
			err = fmt.Errorf("%w: write %s: %w", models.ErrIO, entry.Path, ferr)
		}
	}
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("%w: close %s: %w", models.ErrIO, entry.Path, cerr)
	}
	if err != nil {
		return err
	}

	return e.applyMetadata(path, entry)
}

func (e *folderEngine) applyMetadata(path string, entry models.ManifestEntry) error {
	if err := e.fs.Chmod(path, entry.Mode.Perm()); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", models.ErrIO, entry.Path, err)
	}
	if entry.ModTime.IsZero() {
		return nil
	}
	if err := e.fs.Chtimes(path, entry.ModTime, entry.ModTime); err != nil {
		return fmt.Errorf("%w: chtimes %s: %w", models.ErrIO, entry.Path, err)
	}
	return nil
}

func stagedPath(staging, rel string) string {
	if rel == models.RootPath {
		return staging
	}
	return filepath.Join(staging, filepath.FromSlash(rel))
}
