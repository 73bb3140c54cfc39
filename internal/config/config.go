// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SF_"

// StructuredConfig is the top-level configuration container for
// go-secure-folder. It is populated by merging environment variables,
// command-line flags, an optional JSON file and defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds settings of the interactive client.
	App App `envPrefix:"APP_"`

	// Engine holds the encryption defaults and processing limits.
	Engine Engine `envPrefix:"ENGINE_"`

	// Storage holds the history log backend settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via SF_CONFIG or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds client-level settings.
type App struct {
	// RootDir is where the folder browser starts.
	// Env: SF_APP_ROOT_DIR
	RootDir string `env:"ROOT_DIR"`

	// LogFile receives the client's JSON log.
	// Env: SF_APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// StatusTimeout is how long a status message stays on screen.
	// Env: SF_APP_STATUS_TIMEOUT
	StatusTimeout time.Duration `env:"STATUS_TIMEOUT"`
}

// Engine holds encryption parameters used for new containers. Decryption
// always follows the container's own header.
type Engine struct {
	// KeyLength is the derived key size in bytes: 16, 24 or 32.
	// Env: SF_ENGINE_KEY_LENGTH
	KeyLength int `env:"KEY_LENGTH"`

	// Cipher is "aes-gcm" or "chacha20-poly1305".
	// Env: SF_ENGINE_CIPHER
	Cipher string `env:"CIPHER"`

	// KDF is "argon2id" or "scrypt".
	// Env: SF_ENGINE_KDF
	KDF string `env:"KDF"`

	ArgonTime      uint32 `env:"ARGON_TIME"`
	ArgonMemoryKiB uint32 `env:"ARGON_MEMORY_KIB"`
	ArgonThreads   uint8  `env:"ARGON_THREADS"`

	ScryptN int `env:"SCRYPT_N"`
	ScryptR int `env:"SCRYPT_R"`
	ScryptP int `env:"SCRYPT_P"`

	// ChunkSize is the plaintext size of one sealed chunk.
	// Env: SF_ENGINE_CHUNK_SIZE
	ChunkSize int `env:"CHUNK_SIZE"`

	// Workers caps the files processed in parallel within one operation.
	// Env: SF_ENGINE_WORKERS
	Workers int `env:"WORKERS"`

	// KeepSource leaves the plaintext in place after a successful encrypt.
	// Env: SF_ENGINE_KEEP_SOURCE
	KeepSource bool `env:"KEEP_SOURCE"`
}

// Storage groups persistence settings.
type Storage struct {
	History History `envPrefix:"HISTORY_"`
}

// History selects where operation records are kept.
type History struct {
	// Backend is "sqlite", "file" or "memory".
	// Env: SF_STORAGE_HISTORY_BACKEND
	Backend string `env:"BACKEND"`

	// DSN is the SQLite database path used by the sqlite backend.
	// Env: SF_STORAGE_HISTORY_DSN
	DSN string `env:"DSN"`

	// Path is the JSON-lines file used by the file backend.
	// Env: SF_STORAGE_HISTORY_PATH
	Path string `env:"PATH"`
}

// History backends.
const (
	HistoryBackendSQLite = "sqlite"
	HistoryBackendFile   = "file"
	HistoryBackendMemory = "memory"
)

// GetStructuredConfig loads, merges, and validates the configuration from
// the process environment, os.Args and the JSON file they point to.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		withDefaults().
		build()
}
