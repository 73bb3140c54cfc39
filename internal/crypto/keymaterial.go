// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"

	"github.com/MKhiriev/go-secure-folder/models"
)

// KeyLength is the derived key size in bytes.
type KeyLength int

const (
	KeyLength128 KeyLength = 16
	KeyLength192 KeyLength = 24
	KeyLength256 KeyLength = 32

	// DefaultKeyLength is used when a caller does not choose one.
	DefaultKeyLength = KeyLength256
)

// Valid reports whether l is one of 16, 24 or 32.
func (l KeyLength) Valid() bool {
	return l == KeyLength128 || l == KeyLength192 || l == KeyLength256
}

// Bits returns the key size in bits.
func (l KeyLength) Bits() int {
	return int(l) * 8
}

// SaltSize is the length of the random per-container salt.
const SaltSize = 16

// KDF identifies the memory-hard key-derivation function.
type KDF uint8

const (
	KDFArgon2id KDF = 1
	KDFScrypt   KDF = 2
)

func (k KDF) String() string {
	switch k {
	case KDFArgon2id:
		return "argon2id"
	case KDFScrypt:
		return "scrypt"
	default:
		return fmt.Sprintf("kdf(%d)", uint8(k))
	}
}

// ParseKDF parses a configuration name such as "argon2id" or "scrypt".
func ParseKDF(s string) (KDF, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "argon2id", "argon2":
		return KDFArgon2id, nil
	case "scrypt":
		return KDFScrypt, nil
	default:
		return 0, fmt.Errorf("%w: unknown kdf %q", models.ErrInvalidConfig, s)
	}
}

// Bounds accepted for KDF parameters. Headers are read before anything is
// authenticated, so these cap the work a damaged or crafted header can
// demand on decrypt: at most 1 GiB of memory for either KDF.
const (
	maxArgonTime      = 16
	maxArgonMemoryKiB = 1 << 20 // 1 GiB
	maxScryptN        = 1 << 20
	maxScryptR        = 32
	maxScryptP        = 16
	maxScryptMemory   = 1 << 30
)

// KDFParams selects a KDF and its cost parameters. Only the fields of the
// selected algorithm are used.
type KDFParams struct {
	Algorithm KDF

	// Argon2id.
	Time      uint32
	MemoryKiB uint32
	Threads   uint8

	// scrypt.
	N int
	R int
	P int
}

// DefaultKDFParams returns Argon2id with OWASP-recommended costs:
// 1 iteration, 64 MiB, 4 lanes.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Algorithm: KDFArgon2id,
		Time:      1,
		MemoryKiB: 64 * 1024,
		Threads:   4,
	}
}

// DefaultScryptParams returns scrypt with N=32768, r=8, p=1.
func DefaultScryptParams() KDFParams {
	return KDFParams{Algorithm: KDFScrypt, N: 1 << 15, R: 8, P: 1}
}

// Validate checks the parameters of the selected algorithm.
func (p KDFParams) Validate() error {
	switch p.Algorithm {
	case KDFArgon2id:
		if p.Time == 0 || p.Time > maxArgonTime {
			return fmt.Errorf("%w: argon2id time %d out of range", models.ErrInvalidConfig, p.Time)
		}
		if p.Threads == 0 {
			return fmt.Errorf("%w: argon2id threads must be positive", models.ErrInvalidConfig)
		}
		if p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxArgonMemoryKiB {
			return fmt.Errorf("%w: argon2id memory %d KiB out of range", models.ErrInvalidConfig, p.MemoryKiB)
		}
	case KDFScrypt:
		if p.N <= 1 || p.N > maxScryptN || p.N&(p.N-1) != 0 {
			return fmt.Errorf("%w: scrypt N must be a power of two in (1, %d]", models.ErrInvalidConfig, maxScryptN)
		}
		if p.R <= 0 || p.R > maxScryptR || p.P <= 0 || p.P > maxScryptP {
			return fmt.Errorf("%w: scrypt r=%d p=%d out of range", models.ErrInvalidConfig, p.R, p.P)
		}
		if 128*int64(p.N)*int64(p.R) > maxScryptMemory {
			return fmt.Errorf("%w: scrypt N=%d r=%d needs more than 1 GiB", models.ErrInvalidConfig, p.N, p.R)
		}
	default:
		return fmt.Errorf("%w: unknown kdf %d", models.ErrInvalidConfig, p.Algorithm)
	}
	return nil
}

// Encode packs the selected algorithm's costs into three words for the
// container header.
func (p KDFParams) Encode() [3]uint32 {
	if p.Algorithm == KDFScrypt {
		return [3]uint32{uint32(p.N), uint32(p.R), uint32(p.P)}
	}
	return [3]uint32{p.Time, p.MemoryKiB, uint32(p.Threads)}
}

// DecodeKDFParams is the inverse of [KDFParams.Encode]. The result is
// validated.
func DecodeKDFParams(kdf KDF, words [3]uint32) (KDFParams, error) {
	var p KDFParams
	switch kdf {
	case KDFArgon2id:
		if words[2] > 0xff {
			return KDFParams{}, fmt.Errorf("%w: argon2id threads %d", models.ErrInvalidConfig, words[2])
		}
		p = KDFParams{Algorithm: kdf, Time: words[0], MemoryKiB: words[1], Threads: uint8(words[2])}
	case KDFScrypt:
		p = KDFParams{Algorithm: kdf, N: int(words[0]), R: int(words[1]), P: int(words[2])}
	default:
		return KDFParams{}, fmt.Errorf("%w: unknown kdf %d", models.ErrInvalidConfig, kdf)
	}
	return p, p.Validate()
}

// KeyMaterial is a derived key held in locked memory.
type KeyMaterial struct {
	buf    *memguard.LockedBuffer
	length KeyLength
}

// Bytes returns a view of the key. Invalid after Destroy.
func (k *KeyMaterial) Bytes() []byte {
	if k == nil || k.buf == nil || !k.buf.IsAlive() {
		return nil
	}
	return k.buf.Bytes()
}

// Length returns the key length.
func (k *KeyMaterial) Length() KeyLength {
	return k.length
}

// Destroy wipes the key. Safe to call more than once.
func (k *KeyMaterial) Destroy() {
	if k == nil || k.buf == nil {
		return
	}
	k.buf.Destroy()
}

func (k *KeyMaterial) String() string { return redacted }

func (k *KeyMaterial) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// kdfDeriver is the default [Deriver]. The function fields exist so tests
// can observe whether a KDF ran.
type kdfDeriver struct {
	argon  func(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte
	scrypt func(password, salt []byte, n, r, p, keyLen int) ([]byte, error)
}

// NewDeriver returns a [Deriver] backed by golang.org/x/crypto argon2 and scrypt.
func NewDeriver() Deriver {
	return &kdfDeriver{argon: argon2.IDKey, scrypt: scrypt.Key}
}

// Derive implements [Deriver].
func (d *kdfDeriver) Derive(userKey *Secret, length KeyLength, salt []byte, params KDFParams) (*KeyMaterial, error) {
	if !length.Valid() {
		return nil, fmt.Errorf("%w: key length %d, want 16, 24 or 32", models.ErrInvalidConfig, length)
	}
	if userKey.Empty() {
		return nil, fmt.Errorf("%w: empty key", models.ErrInvalidConfig)
	}
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", models.ErrInvalidConfig, SaltSize)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		derived []byte
		err     error
	)
	switch params.Algorithm {
	case KDFScrypt:
		derived, err = d.scrypt(userKey.Bytes(), salt, params.N, params.R, params.P, int(length))
		if err != nil {
			return nil, fmt.Errorf("scrypt: %w", err)
		}
	default:
		derived = d.argon(userKey.Bytes(), salt, params.Time, params.MemoryKiB, params.Threads, uint32(length))
	}

	// NewBufferFromBytes wipes derived.
	return &KeyMaterial{buf: memguard.NewBufferFromBytes(derived), length: length}, nil
}

// RandomBytes reads n bytes from the OS CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}
