package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	RootDir       string
	LogFile       string
	StatusTimeout time.Duration
}

// ClientEngine holds typed encryption settings for new containers.
type ClientEngine struct {
	KeyLength  crypto.KeyLength
	Cipher     crypto.Cipher
	KDF        crypto.KDFParams
	ChunkSize  int
	Workers    int
	KeepSource bool
}

// ClientStorage holds the history backend selection.
type ClientStorage struct {
	History History
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Engine  ClientEngine
	Storage ClientStorage
}

// GetClientConfig builds and validates the client config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	cipher, err := crypto.ParseCipher(cfg.Engine.Cipher)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEngineConfigs, err)
	}
	kdf, err := crypto.ParseKDF(cfg.Engine.KDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEngineConfigs, err)
	}

	params := crypto.KDFParams{Algorithm: kdf}
	switch kdf {
	case crypto.KDFArgon2id:
		params.Time = cfg.Engine.ArgonTime
		params.MemoryKiB = cfg.Engine.ArgonMemoryKiB
		params.Threads = cfg.Engine.ArgonThreads
	case crypto.KDFScrypt:
		params.N = cfg.Engine.ScryptN
		params.R = cfg.Engine.ScryptR
		params.P = cfg.Engine.ScryptP
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEngineConfigs, err)
	}

	keyLength := crypto.KeyLength(cfg.Engine.KeyLength)
	if !cipher.Supports(keyLength) {
		return nil, fmt.Errorf("%w: %s does not support %d-byte keys", ErrInvalidEngineConfigs, cipher, keyLength)
	}

	return &ClientConfig{
		App: ClientApp{
			RootDir:       cfg.App.RootDir,
			LogFile:       cfg.App.LogFile,
			StatusTimeout: cfg.App.StatusTimeout,
		},
		Engine: ClientEngine{
			KeyLength:  keyLength,
			Cipher:     cipher,
			KDF:        params,
			ChunkSize:  cfg.Engine.ChunkSize,
			Workers:    cfg.Engine.Workers,
			KeepSource: cfg.Engine.KeepSource,
		},
		Storage: ClientStorage{History: cfg.Storage.History},
	}, nil
}
