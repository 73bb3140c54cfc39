// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package manifest builds and parses the versioned binary manifest stored,
// encrypted, at the head of every container.
//
// Wire layout (big endian):
//
//	u16 version | u8 kind | u16 nameLen | name
//	kind=file:   entry
//	kind=folder: u32 count | entry * count
//
//	entry: u8 kind | u16 pathLen | path | u64 size | u32 mode | i64 mtimeUnixNano | [32]checksum
//
// Folder entries are sorted by path with the root "." first, so the same
// tree always produces the same bytes regardless of walk or completion order.
package manifest

import (
	"encoding/binary"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/MKhiriev/go-secure-folder/models"
)

// Version is the only manifest version this package writes and accepts.
const Version uint16 = 1

// Kind tells a single-file container from a folder container.
type Kind uint8

const (
	KindFile   Kind = 1
	KindFolder Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

const (
	maxPathLen = 0xffff
	// kind + pathLen + 1-byte path + size + mode + mtime + checksum
	minEntrySize = 1 + 2 + 1 + 8 + 4 + 8 + 32
)

// Manifest lists what a container holds.
type Manifest struct {
	Kind Kind

	// Name is the base name of the encrypted file or folder.
	Name string

	// File describes the payload of a single-file container. Its Path
	// equals Name.
	File models.ManifestEntry

	// Entries lists a folder container's tree, root first.
	Entries []models.ManifestEntry
}

// NewFile returns a single-file manifest.
func NewFile(entry models.ManifestEntry) Manifest {
	entry.Path = entry.Path[strings.LastIndexByte(entry.Path, '/')+1:]
	entry.Kind = models.EntryFile
	return Manifest{Kind: KindFile, Name: entry.Path, File: entry}
}

// NewFolder returns a folder manifest. Entries are sorted.
func NewFolder(name string, entries []models.ManifestEntry) Manifest {
	m := Manifest{Kind: KindFolder, Name: name, Entries: slices.Clone(entries)}
	Sort(m.Entries)
	return m
}

// Files returns the entries that carry a ciphertext segment, in stream
// order: stream i+1 holds Files()[i].
func (m Manifest) Files() []models.ManifestEntry {
	if m.Kind == KindFile {
		return []models.ManifestEntry{m.File}
	}
	files := make([]models.ManifestEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.IsFile() {
			files = append(files, e)
		}
	}
	return files
}

// TotalSize returns the summed plaintext size of all files.
func (m Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files() {
		total += f.Size
	}
	return total
}

// Sort orders entries by path, root first.
func Sort(entries []models.ManifestEntry) {
	slices.SortStableFunc(entries, func(a, b models.ManifestEntry) int {
		return comparePaths(a.Path, b.Path)
	})
}

func comparePaths(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == models.RootPath:
		return -1
	case b == models.RootPath:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// Build validates m and serialises it. Folder entries are sorted first,
// so input order does not matter.
func Build(m Manifest) ([]byte, error) {
	if m.Kind == KindFolder {
		m.Entries = slices.Clone(m.Entries)
		Sort(m.Entries)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, 0, 64+len(m.Entries)*(minEntrySize+32))
	b = binary.BigEndian.AppendUint16(b, Version)
	b = append(b, byte(m.Kind))
	b = appendString(b, m.Name)

	switch m.Kind {
	case KindFile:
		b = appendEntry(b, m.File)
	case KindFolder:
		b = binary.BigEndian.AppendUint32(b, uint32(len(m.Entries)))
		for _, e := range m.Entries {
			b = appendEntry(b, e)
		}
	}

	return b, nil
}

func appendString(b []byte, s string) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

func appendEntry(b []byte, e models.ManifestEntry) []byte {
	b = append(b, byte(e.Kind))
	b = appendString(b, e.Path)
	b = binary.BigEndian.AppendUint64(b, uint64(e.Size))
	b = binary.BigEndian.AppendUint32(b, uint32(e.Mode.Perm()))
	var mtime int64
	if !e.ModTime.IsZero() {
		mtime = e.ModTime.UnixNano()
	}
	b = binary.BigEndian.AppendUint64(b, uint64(mtime))
	return append(b, e.Checksum[:]...)
}

// Parse decodes and validates a manifest. Every failure wraps
// models.ErrCorruptManifest.
func Parse(data []byte) (Manifest, error) {
	r := &reader{buf: data}

	version := r.u16()
	if r.err == nil && version != Version {
		return Manifest{}, fmt.Errorf("%w: unsupported manifest version %d", models.ErrCorruptManifest, version)
	}

	m := Manifest{Kind: Kind(r.u8())}
	m.Name = r.str()

	switch m.Kind {
	case KindFile:
		m.File = r.entry()
	case KindFolder:
		count := r.u32()
		if r.err == nil && uint64(count) > uint64(r.remaining()/minEntrySize) {
			return Manifest{}, fmt.Errorf("%w: entry count %d exceeds payload", models.ErrCorruptManifest, count)
		}
		m.Entries = make([]models.ManifestEntry, 0, count)
		for i := uint32(0); i < count && r.err == nil; i++ {
			m.Entries = append(m.Entries, r.entry())
		}
	default:
		if r.err == nil {
			return Manifest{}, fmt.Errorf("%w: unknown manifest kind %d", models.ErrCorruptManifest, m.Kind)
		}
	}

	if r.err != nil {
		return Manifest{}, r.err
	}
	if r.remaining() != 0 {
		return Manifest{}, fmt.Errorf("%w: %d trailing bytes", models.ErrCorruptManifest, r.remaining())
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}

	return m, nil
}

// reader is a bounds-checked cursor. The first failure sticks.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.remaining() < n {
		r.err = fmt.Errorf("%w: truncated at offset %d", models.ErrCorruptManifest, r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (r *reader) str() string {
	n := int(r.u16())
	return string(r.take(n))
}

func (r *reader) entry() models.ManifestEntry {
	var e models.ManifestEntry
	e.Kind = models.EntryKind(r.u8())
	e.Path = r.str()
	e.Size = int64(r.u64())
	e.Mode = fs.FileMode(r.u32()) & fs.ModePerm
	if mtime := int64(r.u64()); mtime != 0 {
		e.ModTime = time.Unix(0, mtime)
	}
	copy(e.Checksum[:], r.take(32))
	return e
}
