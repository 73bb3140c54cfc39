// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"io/fs"
	"time"
)

// EntryKind is the type of a manifest entry.
type EntryKind uint8

const (
	// EntryFile is a regular file with a ciphertext segment.
	EntryFile EntryKind = 1

	// EntryDir is a directory. Directories carry no payload.
	EntryDir EntryKind = 2

	// EntrySymlink is a symbolic link found during the walk. Links are never
	// followed and never restored; the entry only records that one was skipped.
	EntrySymlink EntryKind = 3
)

func (k EntryKind) String() string {
	switch k {
	case EntryFile:
		return "file"
	case EntryDir:
		return "dir"
	case EntrySymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	return k == EntryFile || k == EntryDir || k == EntrySymlink
}

// RootPath is the manifest path of the encrypted folder itself.
const RootPath = "."

// ManifestEntry describes one item of an encrypted tree.
type ManifestEntry struct {
	// Path is slash-separated and relative to the encrypted root.
	Path string `json:"path"`

	Kind EntryKind `json:"kind"`

	// Size is the plaintext size in bytes. Zero for directories and links.
	Size int64 `json:"size"`

	// Mode holds the permission bits restored on decrypt.
	Mode fs.FileMode `json:"mode"`

	ModTime time.Time `json:"mod_time"`

	// Checksum is the SHA-256 of the plaintext. Zero for non-files.
	Checksum [32]byte `json:"checksum"`
}

// IsFile reports whether e carries a ciphertext segment.
func (e ManifestEntry) IsFile() bool {
	return e.Kind == EntryFile
}
