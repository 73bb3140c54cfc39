package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
)

// dataDirName holds the client's own files under the user's home directory.
const dataDirName = ".secure-folder"

const defaultWorkers = 4

func defaultConfig() *StructuredConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, dataDirName)

	argon := crypto.DefaultKDFParams()
	scrypt := crypto.DefaultScryptParams()

	return &StructuredConfig{
		App: App{
			RootDir:       home,
			LogFile:       filepath.Join(dataDir, "client.log"),
			StatusTimeout: 5 * time.Second,
		},
		Engine: Engine{
			KeyLength:      int(crypto.DefaultKeyLength),
			Cipher:         crypto.CipherAESGCM.String(),
			KDF:            crypto.KDFArgon2id.String(),
			ArgonTime:      argon.Time,
			ArgonMemoryKiB: argon.MemoryKiB,
			ArgonThreads:   argon.Threads,
			ScryptN:        scrypt.N,
			ScryptR:        scrypt.R,
			ScryptP:        scrypt.P,
			ChunkSize:      crypto.DefaultChunkSize,
			Workers:        defaultWorkers,
		},
		Storage: Storage{
			History: History{
				Backend: HistoryBackendSQLite,
				DSN:     filepath.Join(dataDir, "history.db"),
				Path:    filepath.Join(dataDir, "history.jsonl"),
			},
		},
	}
}
