package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// ParseFlags parses command-line arguments into a partial config.
//
// Flags:
//
//	-root folder browser start directory
//	-log-file client log file
//	-status-timeout status line lifetime (e.g. "5s")
//	-key-length derived key length in bytes (16, 24, 32)
//	-cipher aes-gcm | chacha20-poly1305
//	-kdf argon2id | scrypt
//	-argon-time, -argon-memory, -argon-threads argon2id costs
//	-scrypt-n, -scrypt-r, -scrypt-p scrypt costs
//	-chunk-size plaintext bytes per sealed chunk
//	-workers files processed in parallel
//	-keep-source keep plaintext after encrypting
//	-history sqlite | file | memory
//	-history-dsn SQLite history database
//	-history-path JSON-lines history file
//	-c/-config json file path with configs
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("secure-folder", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		cfg          StructuredConfig
		argonThreads uint
		timeout      time.Duration
	)

	fs.StringVar(&cfg.App.RootDir, "root", "", "Folder browser start directory")
	fs.StringVar(&cfg.App.LogFile, "log-file", "", "Client log file")
	fs.DurationVar(&timeout, "status-timeout", 0, "Status line lifetime (e.g., 5s)")

	fs.IntVar(&cfg.Engine.KeyLength, "key-length", 0, "Derived key length in bytes: 16, 24 or 32")
	fs.StringVar(&cfg.Engine.Cipher, "cipher", "", "AEAD: aes-gcm or chacha20-poly1305")
	fs.StringVar(&cfg.Engine.KDF, "kdf", "", "Key derivation: argon2id or scrypt")
	fs.Func("argon-time", "Argon2id passes", uintFlag(&cfg.Engine.ArgonTime))
	fs.Func("argon-memory", "Argon2id memory in KiB", uintFlag(&cfg.Engine.ArgonMemoryKiB))
	fs.UintVar(&argonThreads, "argon-threads", 0, "Argon2id parallelism")
	fs.IntVar(&cfg.Engine.ScryptN, "scrypt-n", 0, "scrypt N (power of two)")
	fs.IntVar(&cfg.Engine.ScryptR, "scrypt-r", 0, "scrypt r")
	fs.IntVar(&cfg.Engine.ScryptP, "scrypt-p", 0, "scrypt p")
	fs.IntVar(&cfg.Engine.ChunkSize, "chunk-size", 0, "Plaintext bytes per sealed chunk")
	fs.IntVar(&cfg.Engine.Workers, "workers", 0, "Files processed in parallel")
	fs.BoolVar(&cfg.Engine.KeepSource, "keep-source", false, "Keep plaintext after encrypting")

	fs.StringVar(&cfg.Storage.History.Backend, "history", "", "History backend: sqlite, file or memory")
	fs.StringVar(&cfg.Storage.History.DSN, "history-dsn", "", "SQLite history database")
	fs.StringVar(&cfg.Storage.History.Path, "history-path", "", "JSON-lines history file")

	fs.StringVar(&cfg.JSONFilePath, "c", "", "JSON config file path")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	if argonThreads > 0xff {
		return nil, fmt.Errorf("%w: argon-threads %d", ErrInvalidEngineConfigs, argonThreads)
	}
	cfg.Engine.ArgonThreads = uint8(argonThreads)
	cfg.App.StatusTimeout = timeout

	return &cfg, nil
}

func uintFlag(dst *uint32) func(string) error {
	return func(s string) error {
		var v uint32
		if _, err := fmt.Sscan(s, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
