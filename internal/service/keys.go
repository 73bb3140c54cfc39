package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/container"
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/manifest"
	"github.com/MKhiriev/go-secure-folder/models"
)

// A saved key is a single-file container whose only payload, named
// keyEntryName, is the raw user key.
const (
	keyEntryName   = "key"
	maxKeyFileSize = 1 << 20
)

func (e *folderEngine) SaveKey(ctx context.Context, key, passphrase *crypto.Secret, destination string) error {
	const op = "save key"

	if key.Empty() || passphrase.Empty() {
		return models.NewOperationError(models.KindInvalidConfig, op, destination, ErrEmptyKey)
	}
	if destination == "" {
		return models.NewOperationError(models.KindInvalidConfig, op, destination, ErrTargetNotFound)
	}
	dst, err := filepath.Abs(destination)
	if err != nil {
		return models.NewOperationError(models.KindInvalidConfig, op, destination, err)
	}

	if err := e.locks.tryLock(dst); err != nil {
		return models.NewOperationError(models.KindInvalidConfig, op, dst, err)
	}
	defer e.locks.unlock(dst)

	if err := e.saveKey(ctx, key, passphrase, dst); err != nil {
		e.logger.Err(err).Str("func", "folderEngine.SaveKey").Str("path", dst).Msg("key not saved")
		return models.NewOperationError("", op, dst, err)
	}
	e.logger.Info().Str("func", "folderEngine.SaveKey").Str("path", dst).Msg("key saved")
	return nil
}

func (e *folderEngine) saveKey(ctx context.Context, key, passphrase *crypto.Secret, dst string) error {
	header, err := container.NewHeader(e.opts.Cipher, crypto.KeyLength256, e.opts.KDF, crypto.MinChunkSize)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	km, err := e.deriver.Derive(passphrase, crypto.KeyLength256, header.Salt, header.KDF)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	enc, err := container.NewEncoder(header, km)
	km.Destroy()
	if err != nil {
		return err
	}

	var seg bytes.Buffer
	res, err := enc.EncryptSegment(&seg, bytes.NewReader(key.Bytes()), 0)
	if err != nil {
		return fmt.Errorf("seal key: %w", err)
	}
	m := manifest.NewFile(models.ManifestEntry{
		Path:     keyEntryName,
		Size:     res.Size,
		Mode:     0o600,
		ModTime:  e.now(),
		Checksum: res.Checksum,
	})

	tmp := fmt.Sprintf("%s.tmp-%s", dst, e.ids.Generate())
	if err := e.writeKeyFile(tmp, enc, m, &seg); err != nil {
		_ = e.fs.Remove(tmp)
		return err
	}
	// An existing key file is replaced.
	if err := e.fs.Rename(tmp, dst); err != nil {
		_ = e.fs.Remove(tmp)
		return fmt.Errorf("%w: rename: %w", models.ErrIO, err)
	}
	e.syncDir(filepath.Dir(dst))
	return nil
}

func (e *folderEngine) writeKeyFile(tmp string, enc *container.Encoder, m manifest.Manifest, seg io.Reader) (err error) {
	f, err := e.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", models.ErrIO, tmp, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close: %w", models.ErrIO, cerr)
		}
	}()

	if err := enc.WriteContainer(f, m, []io.Reader{seg}); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %w", models.ErrIO, err)
	}
	return nil
}

func (e *folderEngine) LoadKey(ctx context.Context, source string, passphrase *crypto.Secret) (*crypto.Secret, error) {
	const op = "load key"

	if passphrase.Empty() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, source, ErrEmptyKey)
	}
	src, info, err := e.target(source)
	if err != nil {
		return nil, models.NewOperationError("", op, source, err)
	}
	if !info.Mode().IsRegular() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, src, ErrNotContainer)
	}

	key, err := e.loadKey(ctx, src, info.Size(), passphrase)
	if err != nil {
		e.logger.Err(err).Str("func", "folderEngine.LoadKey").Str("path", src).Msg("key not loaded")
		return nil, models.NewOperationError("", op, src, err)
	}
	return key, nil
}

func (e *folderEngine) loadKey(ctx context.Context, src string, size int64, passphrase *crypto.Secret) (*crypto.Secret, error) {
	if size > maxKeyFileSize {
		return nil, fmt.Errorf("%w: %w: %d bytes", models.ErrCorruptManifest, ErrNotKeyFile, size)
	}
	data, err := afero.ReadFile(e.fs, src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, ErrTargetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", models.ErrIO, err)
	}

	r := bytes.NewReader(data)
	header, err := container.ReadHeaderAt(r, int64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	km, err := e.deriver.Derive(passphrase, header.KeyLength, header.Salt, header.KDF)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	dec, err := container.NewDecoder(r, int64(len(data)), header, km)
	km.Destroy()
	if err != nil {
		return nil, err
	}

	m := dec.Manifest()
	if m.Kind != manifest.KindFile || m.Name != keyEntryName || m.File.Size == 0 {
		return nil, fmt.Errorf("%w: %w", models.ErrCorruptManifest, ErrNotKeyFile)
	}

	buf := bytes.NewBuffer(make([]byte, 0, m.File.Size))
	if err := dec.DecryptSegment(buf, 0); err != nil {
		clear(buf.Bytes())
		return nil, err
	}
	return crypto.NewSecret(buf.Bytes()), nil
}
