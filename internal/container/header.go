// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package container reads and writes the encrypted container format:
//
//	header | u32 manifestLen | sealed manifest | file segments...
//
// The header is plaintext but authenticated: its bytes are bound into the
// associated data of every chunk, including the manifest.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/models"
)

// Magic opens every container.
var Magic = [4]byte{'S', 'F', 'L', 'D'}

// FormatVersion is the container layout version.
const FormatVersion uint8 = 1

const (
	maxSaltSize = 64
	// magic + version + cipher + kdf + keyLen + 3*kdfParam + chunkSize + saltLen
	fixedHeaderSize = 4 + 1 + 1 + 1 + 1 + 3*4 + 4 + 1
)

// Header is the self-describing plaintext prefix of a container.
type Header struct {
	Cipher    crypto.Cipher
	KeyLength crypto.KeyLength
	KDF       crypto.KDFParams
	ChunkSize int
	Salt      []byte
	Nonce     [crypto.NonceSize]byte
}

// NewHeader returns a header with a fresh random salt and base nonce.
func NewHeader(c crypto.Cipher, l crypto.KeyLength, kdf crypto.KDFParams, chunkSize int) (Header, error) {
	h := Header{Cipher: c, KeyLength: l, KDF: kdf, ChunkSize: chunkSize}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	salt, err := crypto.RandomBytes(crypto.SaltSize)
	if err != nil {
		return Header{}, err
	}
	nonce, err := crypto.RandomBytes(crypto.NonceSize)
	if err != nil {
		return Header{}, err
	}

	h.Salt = salt
	copy(h.Nonce[:], nonce)
	return h, nil
}

// Validate checks the header fields. Errors wrap models.ErrInvalidConfig.
func (h Header) Validate() error {
	if !h.KeyLength.Valid() {
		return fmt.Errorf("%w: key length %d, want 16, 24 or 32", models.ErrInvalidConfig, h.KeyLength)
	}
	if !h.Cipher.Supports(h.KeyLength) {
		return fmt.Errorf("%w: %s does not support %d-byte keys", models.ErrInvalidConfig, h.Cipher, h.KeyLength)
	}
	if h.ChunkSize < crypto.MinChunkSize || h.ChunkSize > crypto.MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d out of range", models.ErrInvalidConfig, h.ChunkSize)
	}
	if h.Salt != nil && (len(h.Salt) < crypto.SaltSize || len(h.Salt) > maxSaltSize) {
		return fmt.Errorf("%w: salt length %d", models.ErrInvalidConfig, len(h.Salt))
	}
	return h.KDF.Validate()
}

// Size returns the serialised header length.
func (h Header) Size() int64 {
	return int64(fixedHeaderSize + len(h.Salt) + crypto.NonceSize)
}

// MarshalBinary serialises the header. The encoding is canonical, so a
// parsed header marshals back to the bytes it was read from.
func (h Header) MarshalBinary() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if len(h.Salt) == 0 {
		return nil, fmt.Errorf("%w: header has no salt", models.ErrInvalidConfig)
	}

	b := make([]byte, 0, h.Size())
	b = append(b, Magic[:]...)
	b = append(b, FormatVersion, byte(h.Cipher), byte(h.KDF.Algorithm), byte(h.KeyLength))
	for _, w := range h.KDF.Encode() {
		b = binary.BigEndian.AppendUint32(b, w)
	}
	b = binary.BigEndian.AppendUint32(b, uint32(h.ChunkSize))
	b = append(b, byte(len(h.Salt)))
	b = append(b, h.Salt...)
	b = append(b, h.Nonce[:]...)
	return b, nil
}

// ReadHeader parses a header from r. Any malformed or unsupported field is
// reported as models.ErrCorruptManifest.
func ReadHeader(r io.Reader) (Header, error) {
	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, readErr("header", err)
	}

	if [4]byte(fixed[:4]) != Magic {
		return Header{}, fmt.Errorf("%w: not a secure-folder container", models.ErrCorruptManifest)
	}
	if fixed[4] != FormatVersion {
		return Header{}, fmt.Errorf("%w: unsupported format version %d", models.ErrCorruptManifest, fixed[4])
	}

	h := Header{
		Cipher:    crypto.Cipher(fixed[5]),
		KeyLength: crypto.KeyLength(fixed[7]),
	}

	var words [3]uint32
	for i := range words {
		words[i] = binary.BigEndian.Uint32(fixed[8+4*i:])
	}
	kdf, err := crypto.DecodeKDFParams(crypto.KDF(fixed[6]), words)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", models.ErrCorruptManifest, err)
	}
	h.KDF = kdf
	h.ChunkSize = int(binary.BigEndian.Uint32(fixed[20:24]))

	saltLen := int(fixed[24])
	if saltLen < crypto.SaltSize || saltLen > maxSaltSize {
		return Header{}, fmt.Errorf("%w: salt length %d", models.ErrCorruptManifest, saltLen)
	}

	rest := make([]byte, saltLen+crypto.NonceSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Header{}, readErr("header", err)
	}
	h.Salt = rest[:saltLen]
	copy(h.Nonce[:], rest[saltLen:])

	if err := h.Validate(); err != nil {
		return Header{}, fmt.Errorf("%w: %v", models.ErrCorruptManifest, err)
	}
	return h, nil
}

func readErr(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", models.ErrCorruptManifest, what)
	}
	return fmt.Errorf("read %s: %w", what, err)
}
