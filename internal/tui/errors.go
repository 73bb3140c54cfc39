// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"

	"github.com/MKhiriev/go-secure-folder/models"
)

var (
	errNoKeyHeld     = errors.New("no key loaded: encrypt, decrypt or load a key first")
	errNothingToCopy = errors.New("no container created yet")
)

// humanizeError turns an engine error into a status line message.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	switch models.KindOf(err) {
	case models.KindAuthFailure:
		return "Wrong key, or the container has been modified"
	case models.KindCorruptManifest:
		return "Not a secure-folder container, or it is damaged"
	case models.KindIntegrityMismatch:
		return "Decrypted data does not match its checksum"
	case models.KindCancelled:
		return "Operation cancelled"
	case models.KindInvalidConfig:
		if errors.Is(err, models.ErrBusy) {
			return "Another operation is using this path"
		}
		return err.Error()
	default:
		return "I/O error: " + err.Error()
	}
}
