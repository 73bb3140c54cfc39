// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"

	"github.com/awnumar/memguard"
)

const redacted = "[SECRET]"

// Secret holds a user-supplied key or passphrase in a locked, guarded
// memory region. It never prints its contents and is wiped by Destroy.
type Secret struct {
	buf *memguard.LockedBuffer
}

// NewSecret moves b into protected memory. b is wiped.
func NewSecret(b []byte) *Secret {
	return &Secret{buf: memguard.NewBufferFromBytes(b)}
}

// NewSecretFromString copies s into protected memory. The string itself
// cannot be wiped, so callers should prefer [NewSecret] when they own a
// byte slice.
func NewSecretFromString(s string) *Secret {
	return NewSecret([]byte(s))
}

// Bytes returns a view of the protected bytes. The slice is invalid after
// Destroy and must not be retained.
func (s *Secret) Bytes() []byte {
	if s == nil || s.buf == nil || !s.buf.IsAlive() {
		return nil
	}
	return s.buf.Bytes()
}

// Len returns the secret length in bytes.
func (s *Secret) Len() int {
	return len(s.Bytes())
}

// Empty reports whether the secret holds no bytes or was destroyed.
func (s *Secret) Empty() bool {
	return s.Len() == 0
}

// Clone returns an independent copy that must be destroyed separately.
func (s *Secret) Clone() *Secret {
	src := s.Bytes()
	buf := memguard.NewBuffer(len(src))
	if len(src) > 0 {
		buf.Copy(src)
	}
	return &Secret{buf: buf}
}

// Destroy wipes and releases the protected memory. Safe to call twice.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
}

func (s *Secret) String() string   { return redacted }
func (s *Secret) GoString() string { return redacted }

// Format keeps the secret out of every fmt verb, including %x and %v.
func (s *Secret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func (s *Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
