// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/manifest"
	"github.com/MKhiriev/go-secure-folder/models"
)

// MaxManifestSize bounds the sealed manifest a reader will load.
const MaxManifestSize = 64 << 20

// Encoder writes containers under one header and key.
type Encoder struct {
	header Header
	raw    []byte
	codec  *crypto.Codec
}

// NewEncoder prepares an encoder. key must have been derived from the
// header's salt and KDF parameters.
func NewEncoder(h Header, key *crypto.KeyMaterial) (*Encoder, error) {
	raw, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	codec, err := crypto.NewCodec(key, h.Cipher, h.Nonce, raw, h.ChunkSize)
	if err != nil {
		return nil, err
	}
	return &Encoder{header: h, raw: raw, codec: codec}, nil
}

// Header returns the encoder's header.
func (e *Encoder) Header() Header {
	return e.header
}

// EncryptSegment encrypts src as file stream index+1 into dst. Segments
// may be produced concurrently and in any order.
func (e *Encoder) EncryptSegment(dst io.Writer, src io.Reader, index int) (crypto.StreamResult, error) {
	return e.codec.EncryptStream(dst, src, uint32(index)+1)
}

// WriteContainer writes the header, the sealed manifest and the segments,
// in manifest order, to dst. segments[i] must be the output of
// EncryptSegment for m.Files()[i].
func (e *Encoder) WriteContainer(dst io.Writer, m manifest.Manifest, segments []io.Reader) error {
	files := m.Files()
	if len(files) != len(segments) {
		return fmt.Errorf("%w: %d segments for %d files", models.ErrInvalidConfig, len(segments), len(files))
	}

	data, err := manifest.Build(m)
	if err != nil {
		return err
	}
	sealed := e.codec.Seal(crypto.ManifestStream, data).Bytes()
	clear(data)

	if _, err := dst.Write(e.raw); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := dst.Write(binary.BigEndian.AppendUint32(nil, uint32(len(sealed)))); err != nil {
		return fmt.Errorf("write manifest length: %w", err)
	}
	if _, err := dst.Write(sealed); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for i, seg := range segments {
		want := crypto.SealedSize(files[i].Size, e.header.ChunkSize)
		n, err := io.Copy(dst, seg)
		if err != nil {
			return fmt.Errorf("write segment %q: %w", files[i].Path, err)
		}
		if n != want {
			return fmt.Errorf("%w: segment %q is %d bytes, want %d", models.ErrInvalidConfig, files[i].Path, n, want)
		}
	}
	return nil
}

// Decoder reads a container whose manifest has been authenticated.
type Decoder struct {
	header   Header
	codec    *crypto.Codec
	manifest manifest.Manifest
	src      io.ReaderAt
	files    []models.ManifestEntry
	offsets  []int64
}

// ReadHeaderAt parses the header at the start of src.
func ReadHeaderAt(src io.ReaderAt, size int64) (Header, error) {
	return ReadHeader(io.NewSectionReader(src, 0, size))
}

// NewDecoder authenticates and parses the manifest, then checks that the
// remaining bytes are exactly the segments it describes.
//
// Errors: models.ErrCorruptManifest for layout problems, models.ErrAuthFailure
// when the manifest does not verify under key.
func NewDecoder(src io.ReaderAt, size int64, h Header, key *crypto.KeyMaterial) (*Decoder, error) {
	raw, err := h.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptManifest, err)
	}
	codec, err := crypto.NewCodec(key, h.Cipher, h.Nonce, raw, h.ChunkSize)
	if err != nil {
		return nil, err
	}

	pos := int64(len(raw))
	lenBuf := make([]byte, 4)
	if err := readFullAt(src, lenBuf, pos); err != nil {
		return nil, readErr("manifest length", err)
	}
	pos += 4

	sealedLen := int64(binary.BigEndian.Uint32(lenBuf))
	if sealedLen < crypto.TagSize || sealedLen > MaxManifestSize || pos+sealedLen > size {
		return nil, fmt.Errorf("%w: manifest length %d", models.ErrCorruptManifest, sealedLen)
	}

	sealed := make([]byte, sealedLen)
	if err := readFullAt(src, sealed, pos); err != nil {
		return nil, readErr("manifest", err)
	}
	pos += sealedLen

	s := crypto.Sealed{Nonce: codec.Nonce(crypto.ManifestStream, 0), Ciphertext: sealed[:sealedLen-crypto.TagSize]}
	copy(s.Tag[:], sealed[sealedLen-crypto.TagSize:])

	data, err := codec.Open(crypto.ManifestStream, s)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	m, err := manifest.Parse(data)
	clear(data)
	if err != nil {
		return nil, err
	}

	files := m.Files()
	offsets := make([]int64, len(files))
	for i, f := range files {
		offsets[i] = pos
		pos += crypto.SealedSize(f.Size, h.ChunkSize)
	}
	if pos != size {
		return nil, fmt.Errorf("%w: segments span %d bytes, container has %d", models.ErrCorruptManifest, pos, size)
	}

	return &Decoder{
		header:   h,
		codec:    codec,
		manifest: m,
		src:      src,
		files:    files,
		offsets:  offsets,
	}, nil
}

// Manifest returns the authenticated manifest.
func (d *Decoder) Manifest() manifest.Manifest {
	return d.manifest
}

// Header returns the container header.
func (d *Decoder) Header() Header {
	return d.header
}

// DecryptSegment writes the plaintext of Manifest().Files()[index] to dst
// and verifies its checksum. Safe for concurrent use with distinct dst.
//
// Errors: models.ErrAuthFailure for a tag mismatch, models.ErrIntegrityMismatch
// when the plaintext does not match the recorded checksum.
func (d *Decoder) DecryptSegment(dst io.Writer, index int) error {
	if index < 0 || index >= len(d.files) {
		return fmt.Errorf("%w: segment index %d", models.ErrInvalidConfig, index)
	}
	f := d.files[index]
	seg := io.NewSectionReader(d.src, d.offsets[index], crypto.SealedSize(f.Size, d.header.ChunkSize))

	sum, err := d.codec.DecryptStream(dst, seg, uint32(index)+1, f.Size)
	if err != nil {
		return fmt.Errorf("segment %q: %w", f.Path, err)
	}
	if sum != f.Checksum {
		return fmt.Errorf("%w: %q", models.ErrIntegrityMismatch, f.Path)
	}
	return nil
}

// readFullAt treats io.EOF on a complete read as success, as io.ReaderAt allows.
func readFullAt(src io.ReaderAt, buf []byte, off int64) error {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}
