// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/MKhiriev/go-secure-folder/models"
)

// Cipher identifies the AEAD construction.
type Cipher uint8

const (
	// CipherAESGCM is AES-GCM; the key length picks AES-128, -192 or -256.
	CipherAESGCM Cipher = 1

	// CipherChaCha20Poly1305 requires a 32-byte key.
	CipherChaCha20Poly1305 Cipher = 2
)

func (c Cipher) String() string {
	switch c {
	case CipherAESGCM:
		return "aes-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("cipher(%d)", uint8(c))
	}
}

// ParseCipher parses a configuration name.
func ParseCipher(s string) (Cipher, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aes-gcm", "aes", "aesgcm":
		return CipherAESGCM, nil
	case "chacha20-poly1305", "chacha20poly1305", "chacha":
		return CipherChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: unknown cipher %q", models.ErrInvalidConfig, s)
	}
}

// Supports reports whether c accepts keys of length l.
func (c Cipher) Supports(l KeyLength) bool {
	switch c {
	case CipherAESGCM:
		return l.Valid()
	case CipherChaCha20Poly1305:
		return l == KeyLength256
	default:
		return false
	}
}

const (
	NonceSize = 12
	TagSize   = 16

	DefaultChunkSize = 64 << 10
	MinChunkSize     = 1 << 10
	MaxChunkSize     = 16 << 20
)

// ManifestStream is the stream id reserved for the manifest. Files use
// streams 1..n in manifest order.
const ManifestStream uint32 = 0

// Sealed is a one-shot AEAD result.
type Sealed struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
	Tag        [TagSize]byte
}

// Bytes returns ciphertext || tag, the on-disk form.
func (s Sealed) Bytes() []byte {
	out := make([]byte, 0, len(s.Ciphertext)+TagSize)
	out = append(out, s.Ciphertext...)
	return append(out, s.Tag[:]...)
}

// StreamResult summarises an encrypted stream.
type StreamResult struct {
	Size     int64
	Sealed   int64
	Checksum [sha256.Size]byte
}

// Codec seals and opens chunks under one key.
//
// Every chunk nonce is the container base nonce XOR (stream<<32 | index),
// so nonces never repeat under a key. Associated data binds the container
// header, the stream id, the chunk index and a final-chunk flag, which makes
// reordering, truncation and header edits fail authentication.
type Codec struct {
	aead      cipher.AEAD
	baseNonce [NonceSize]byte
	binding   []byte
	chunkSize int
}

// NewCodec builds a codec. binding is authenticated with every chunk and is
// normally the serialised container header.
func NewCodec(key *KeyMaterial, c Cipher, baseNonce [NonceSize]byte, binding []byte, chunkSize int) (*Codec, error) {
	if chunkSize < MinChunkSize || chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: chunk size %d out of range", models.ErrInvalidConfig, chunkSize)
	}
	if !c.Supports(key.Length()) {
		return nil, fmt.Errorf("%w: %s does not support %d-byte keys", models.ErrInvalidConfig, c, key.Length())
	}

	aead, err := newAEAD(c, key.Bytes())
	if err != nil {
		return nil, err
	}

	return &Codec{
		aead:      aead,
		baseNonce: baseNonce,
		binding:   append([]byte(nil), binding...),
		chunkSize: chunkSize,
	}, nil
}

func newAEAD(c Cipher, key []byte) (cipher.AEAD, error) {
	switch c {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("create cipher: %w", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("create gcm: %w", err)
		}
		return gcm, nil
	case CipherChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("create chacha20poly1305: %w", err)
		}
		return aead, nil
	default:
		return nil, fmt.Errorf("%w: unknown cipher %d", models.ErrInvalidConfig, c)
	}
}

// ChunkSize returns the plaintext chunk size.
func (c *Codec) ChunkSize() int {
	return c.chunkSize
}

// Nonce returns the nonce of chunk index in stream.
func (c *Codec) Nonce(stream, index uint32) [NonceSize]byte {
	n := c.baseNonce
	ctr := uint64(stream)<<32 | uint64(index)
	tail := binary.BigEndian.Uint64(n[NonceSize-8:])
	binary.BigEndian.PutUint64(n[NonceSize-8:], tail^ctr)
	return n
}

func (c *Codec) aad(stream, index uint32, final bool) []byte {
	ad := make([]byte, 0, len(c.binding)+9)
	ad = append(ad, c.binding...)
	ad = binary.BigEndian.AppendUint32(ad, stream)
	ad = binary.BigEndian.AppendUint32(ad, index)
	if final {
		return append(ad, 1)
	}
	return append(ad, 0)
}

// SealChunk appends ciphertext || tag of plaintext to dst.
func (c *Codec) SealChunk(dst []byte, stream, index uint32, final bool, plaintext []byte) []byte {
	nonce := c.Nonce(stream, index)
	return c.aead.Seal(dst, nonce[:], plaintext, c.aad(stream, index, final))
}

// OpenChunk verifies sealed (ciphertext || tag) and appends the plaintext
// to dst. A failed tag check wraps models.ErrAuthFailure.
func (c *Codec) OpenChunk(dst []byte, stream, index uint32, final bool, sealed []byte) ([]byte, error) {
	if len(sealed) < TagSize {
		return nil, fmt.Errorf("%w: chunk %d of stream %d shorter than tag", models.ErrCorruptManifest, index, stream)
	}
	nonce := c.Nonce(stream, index)
	out, err := c.aead.Open(dst, nonce[:], sealed, c.aad(stream, index, final))
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d of stream %d", models.ErrAuthFailure, index, stream)
	}
	return out, nil
}

// Seal encrypts a small payload as a single final chunk.
func (c *Codec) Seal(stream uint32, plaintext []byte) Sealed {
	out := c.SealChunk(nil, stream, 0, true, plaintext)
	s := Sealed{Nonce: c.Nonce(stream, 0), Ciphertext: out[:len(out)-TagSize]}
	copy(s.Tag[:], out[len(out)-TagSize:])
	return s
}

// Open decrypts a payload produced by [Codec.Seal].
func (c *Codec) Open(stream uint32, s Sealed) ([]byte, error) {
	sealed := make([]byte, 0, len(s.Ciphertext)+TagSize)
	sealed = append(sealed, s.Ciphertext...)
	sealed = append(sealed, s.Tag[:]...)

	out, err := c.aead.Open(nil, s.Nonce[:], sealed, c.aad(stream, 0, true))
	if err != nil {
		return nil, fmt.Errorf("%w: stream %d", models.ErrAuthFailure, stream)
	}
	return out, nil
}

// EncryptStream reads src to EOF and writes its chunks to dst. The last
// chunk carries the final flag; empty input yields one empty final chunk.
func (c *Codec) EncryptStream(dst io.Writer, src io.Reader, stream uint32) (StreamResult, error) {
	var res StreamResult
	hash := sha256.New()

	cur := make([]byte, c.chunkSize)
	next := make([]byte, c.chunkSize)
	defer func() {
		clear(cur)
		clear(next)
	}()

	n, err := readChunk(src, cur)
	if err != nil {
		return res, err
	}

	sealed := make([]byte, 0, c.chunkSize+TagSize)
	for index := uint32(0); ; index++ {
		m, err := readChunk(src, next)
		if err != nil {
			return res, err
		}
		final := m == 0

		hash.Write(cur[:n])
		sealed = c.SealChunk(sealed[:0], stream, index, final, cur[:n])
		if _, err := dst.Write(sealed); err != nil {
			return res, fmt.Errorf("write chunk %d: %w", index, err)
		}
		res.Size += int64(n)
		res.Sealed += int64(len(sealed))

		if final {
			break
		}
		if index == math.MaxUint32 {
			return res, fmt.Errorf("%w: stream %d exceeds chunk limit", models.ErrInvalidConfig, stream)
		}
		cur, next = next, cur
		n = m
	}

	copy(res.Checksum[:], hash.Sum(nil))
	return res, nil
}

// DecryptStream reads exactly the chunks of a size-byte plaintext from src,
// writes the plaintext to dst and returns its SHA-256.
func (c *Codec) DecryptStream(dst io.Writer, src io.Reader, stream uint32, size int64) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	if size < 0 {
		return sum, fmt.Errorf("%w: negative size", models.ErrCorruptManifest)
	}

	hash := sha256.New()
	count := ChunkCount(size, c.chunkSize)
	remaining := size

	buf := make([]byte, c.chunkSize+TagSize)
	plain := make([]byte, 0, c.chunkSize)
	defer clear(plain[:cap(plain)])

	for i := int64(0); i < count; i++ {
		n := min(remaining, int64(c.chunkSize))
		sealed := buf[:n+TagSize]
		if _, err := io.ReadFull(src, sealed); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return sum, fmt.Errorf("%w: stream %d truncated at chunk %d", models.ErrCorruptManifest, stream, i)
			}
			return sum, fmt.Errorf("read chunk %d: %w", i, err)
		}

		var err error
		plain, err = c.OpenChunk(plain[:0], stream, uint32(i), i == count-1, sealed)
		if err != nil {
			return sum, err
		}

		hash.Write(plain)
		if _, err := dst.Write(plain); err != nil {
			return sum, fmt.Errorf("write chunk %d: %w", i, err)
		}
		remaining -= n
	}

	copy(sum[:], hash.Sum(nil))
	return sum, nil
}

// ChunkCount returns the number of chunks of a size-byte plaintext: at least one.
func ChunkCount(size int64, chunkSize int) int64 {
	if size <= 0 {
		return 1
	}
	cs := int64(chunkSize)
	return (size + cs - 1) / cs
}

// SealedSize returns the on-disk size of a size-byte plaintext.
func SealedSize(size int64, chunkSize int) int64 {
	if size < 0 {
		size = 0
	}
	return size + ChunkCount(size, chunkSize)*TagSize
}

func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("read plaintext: %w", err)
	}
	return n, nil
}
