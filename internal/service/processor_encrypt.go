// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/container"
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/manifest"
	"github.com/MKhiriev/go-secure-folder/internal/workers"
	"github.com/MKhiriev/go-secure-folder/models"
)

// sourceTree is the walked input of an encrypt run.
type sourceTree struct {
	manifest manifest.Manifest

	// sources[i] is the on-disk path of manifest.Files()[i].
	sources []string
}

// encrypt writes out from src. Each file is encrypted into its own segment
// in a private workspace; the container is then assembled in a temp file
// and renamed into place. On any failure nothing appears at out and src is
// left untouched.
func (e *folderEngine) encrypt(ctx context.Context, op *Operation, src, out string, key *crypto.Secret, keyLength crypto.KeyLength) error {
	log := logger.FromContext(ctx)

	op.advance(StateWalking)
	tree, err := e.walk(ctx, src)
	if err != nil {
		return err
	}
	files := tree.manifest.Files()
	op.setTotals(int64(len(files)), tree.manifest.TotalSize())

	header, err := container.NewHeader(e.opts.Cipher, keyLength, e.opts.KDF, e.opts.ChunkSize)
	if err != nil {
		return err
	}
	km, err := e.deriver.Derive(key, keyLength, header.Salt, header.KDF)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	enc, err := container.NewEncoder(header, km)
	km.Destroy()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	workspace := fmt.Sprintf("%s.work-%s", out, op.ID)
	if err := e.fs.Mkdir(workspace, 0o700); err != nil {
		return fmt.Errorf("%w: create workspace: %w", models.ErrIO, err)
	}
	defer e.removeAll(log, workspace)

	op.advance(StateProcessing)
	results := make([]crypto.StreamResult, len(files))
	tasks := make([]workers.Task, len(files))
	for i := range files {
		tasks[i] = func(ctx context.Context) error {
			res, err := e.encryptFile(tree.sources[i], segmentPath(workspace, i), enc, i)
			if err != nil {
				return fmt.Errorf("%s: %w", files[i].Path, err)
			}
			results[i] = res
			op.fileDone(res.Size)
			return nil
		}
	}
	if err := firstError(e.pool.RunAll(ctx, tasks)); err != nil {
		return err
	}

	m := tree.manifest
	applyResults(&m, results)

	op.advance(StateFinalizing)
	tmp := fmt.Sprintf("%s.tmp-%s", out, op.ID)
	if err := e.writeContainer(tmp, enc, m, workspace); err != nil {
		e.removeAll(log, tmp)
		return err
	}
	if err := e.publish(ctx, tmp, out); err != nil {
		e.removeAll(log, tmp)
		return err
	}
	op.setOutput(out)

	if !e.opts.KeepSource {
		if err := e.fs.RemoveAll(src); err != nil {
			log.Warn().Err(err).Str("func", "folderEngine.encrypt").Msg("container published but source not removed")
			op.setWarning(fmt.Sprintf("%s: source not fully removed: %v", ErrSourceNotRemoved, err))
		}
	}
	return nil
}

// walk lists src without following symlinks. Links are recorded and
// skipped; devices, sockets and pipes are ignored.
func (e *folderEngine) walk(ctx context.Context, src string) (sourceTree, error) {
	log := logger.FromContext(ctx)

	info, err := lstat(e.fs, src)
	if err != nil {
		return sourceTree{}, fmt.Errorf("%w: stat: %w", models.ErrIO, err)
	}
	if info.Mode().IsRegular() {
		m := manifest.NewFile(models.ManifestEntry{
			Path:    filepath.Base(src),
			Size:    info.Size(),
			Mode:    info.Mode().Perm(),
			ModTime: info.ModTime(),
		})
		return sourceTree{manifest: m, sources: []string{src}}, nil
	}

	var entries []models.ManifestEntry
	onDisk := make(map[string]string)

	err = afero.Walk(e.fs, src, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		entry := models.ManifestEntry{
			Path:    filepath.ToSlash(rel),
			Mode:    fi.Mode().Perm(),
			ModTime: fi.ModTime(),
		}

		switch mode := fi.Mode(); {
		case mode.IsDir():
			entry.Kind = models.EntryDir
		case mode&os.ModeSymlink != 0:
			entry.Kind = models.EntrySymlink
			log.Debug().Str("path", entry.Path).Msg("symlink recorded, not followed")
		case mode.IsRegular():
			entry.Kind = models.EntryFile
			entry.Size = fi.Size()
			onDisk[entry.Path] = p
		default:
			log.Debug().Str("path", entry.Path).Str("mode", mode.String()).Msg("special file skipped")
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return sourceTree{}, err
		}
		return sourceTree{}, fmt.Errorf("%w: walk: %w", models.ErrIO, err)
	}

	m := manifest.NewFolder(filepath.Base(src), entries)
	files := m.Files()
	sources := make([]string, len(files))
	for i, f := range files {
		sources[i] = onDisk[f.Path]
	}
	return sourceTree{manifest: m, sources: sources}, nil
}

func (e *folderEngine) encryptFile(src, dst string, enc *container.Encoder, index int) (res crypto.StreamResult, err error) {
	in, err := e.fs.Open(src)
	if err != nil {
		return res, fmt.Errorf("%w: open: %w", models.ErrIO, err)
	}
	defer in.Close()

	seg, err := e.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return res, fmt.Errorf("%w: create segment: %w", models.ErrIO, err)
	}
	defer func() {
		if cerr := seg.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close segment: %w", models.ErrIO, cerr)
		}
	}()

	w := bufio.NewWriterSize(seg, bufferSize)
	res, err = enc.EncryptSegment(w, bufio.NewReaderSize(in, bufferSize), index)
	if err != nil {
		return res, fmt.Errorf("%w: encrypt: %w", models.ErrIO, err)
	}
	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("%w: write segment: %w", models.ErrIO, err)
	}
	return res, nil
}

func (e *folderEngine) writeContainer(tmp string, enc *container.Encoder, m manifest.Manifest, workspace string) (err error) {
	f, err := e.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", models.ErrIO, tmp, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %w", models.ErrIO, tmp, cerr)
		}
	}()

	files := m.Files()
	segments := make([]io.Reader, len(files))
	readers := make([]*segmentReader, len(files))
	for i := range files {
		readers[i] = &segmentReader{fs: e.fs, path: segmentPath(workspace, i)}
		segments[i] = readers[i]
	}
	defer func() {
		for _, r := range readers {
			_ = r.Close()
		}
	}()

	w := bufio.NewWriterSize(f, bufferSize)
	if err := enc.WriteContainer(w, m, segments); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", models.ErrIO, tmp, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", models.ErrIO, tmp, err)
	}
	return nil
}

// applyResults copies sizes and checksums measured while encrypting back
// into the manifest; a file may have changed since it was walked.
func applyResults(m *manifest.Manifest, results []crypto.StreamResult) {
	if m.Kind == manifest.KindFile {
		m.File.Size = results[0].Size
		m.File.Checksum = results[0].Checksum
		return
	}

	i := 0
	for j := range m.Entries {
		if !m.Entries[j].IsFile() {
			continue
		}
		m.Entries[j].Size = results[i].Size
		m.Entries[j].Checksum = results[i].Checksum
		i++
	}
}

func segmentPath(workspace string, index int) string {
	return filepath.Join(workspace, strconv.Itoa(index)+".seg")
}
