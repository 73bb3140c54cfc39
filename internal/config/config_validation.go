// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
)

// validate checks the merged [StructuredConfig] before it is used at
// startup. Typed values such as ciphers are checked again, and converted,
// by [newClientConfig].
func (cfg *StructuredConfig) validate() error {
	if cfg.App.RootDir == "" {
		return fmt.Errorf("%w: empty root directory", ErrInvalidAppConfigs)
	}
	if cfg.App.StatusTimeout < 0 {
		return fmt.Errorf("%w: negative status timeout", ErrInvalidAppConfigs)
	}

	e := cfg.Engine
	if !crypto.KeyLength(e.KeyLength).Valid() {
		return fmt.Errorf("%w: key length %d, want 16, 24 or 32", ErrInvalidEngineConfigs, e.KeyLength)
	}
	if e.ChunkSize < crypto.MinChunkSize || e.ChunkSize > crypto.MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d out of range", ErrInvalidEngineConfigs, e.ChunkSize)
	}
	if e.Workers < 0 {
		return fmt.Errorf("%w: negative worker count", ErrInvalidEngineConfigs)
	}

	h := cfg.Storage.History
	switch h.Backend {
	case HistoryBackendSQLite:
		if h.DSN == "" {
			return fmt.Errorf("%w: sqlite history needs a DSN", ErrInvalidStorageConfigs)
		}
	case HistoryBackendFile:
		if h.Path == "" {
			return fmt.Errorf("%w: file history needs a path", ErrInvalidStorageConfigs)
		}
	case HistoryBackendMemory:
	default:
		return fmt.Errorf("%w: unknown history backend %q", ErrInvalidStorageConfigs, h.Backend)
	}

	return nil
}
