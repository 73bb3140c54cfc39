package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		RootDir       string   `json:"root_dir"`
		LogFile       string   `json:"log_file"`
		StatusTimeout Duration `json:"status_timeout"`
	} `json:"app,omitempty"`

	Engine struct {
		KeyLength int    `json:"key_length"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		Argon2id  struct {
			Time      uint32 `json:"time"`
			MemoryKiB uint32 `json:"memory_kib"`
			Threads   uint8  `json:"threads"`
		} `json:"argon2id,omitempty"`
		Scrypt struct {
			N int `json:"n"`
			R int `json:"r"`
			P int `json:"p"`
		} `json:"scrypt,omitempty"`
		ChunkSize  int  `json:"chunk_size"`
		Workers    int  `json:"workers"`
		KeepSource bool `json:"keep_source"`
	} `json:"engine,omitempty"`

	Storage struct {
		History struct {
			Backend string `json:"backend"`
			DSN     string `json:"dsn"`
			Path    string `json:"path"`
		} `json:"history,omitempty"`
	} `json:"storage,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	dec := json.NewDecoder(jsonFile)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	e := jsonCfg.Engine
	cfg := &StructuredConfig{
		App: App{
			RootDir:       jsonCfg.App.RootDir,
			LogFile:       jsonCfg.App.LogFile,
			StatusTimeout: time.Duration(jsonCfg.App.StatusTimeout),
		},
		Engine: Engine{
			KeyLength:      e.KeyLength,
			Cipher:         e.Cipher,
			KDF:            e.KDF,
			ArgonTime:      e.Argon2id.Time,
			ArgonMemoryKiB: e.Argon2id.MemoryKiB,
			ArgonThreads:   e.Argon2id.Threads,
			ScryptN:        e.Scrypt.N,
			ScryptR:        e.Scrypt.R,
			ScryptP:        e.Scrypt.P,
			ChunkSize:      e.ChunkSize,
			Workers:        e.Workers,
			KeepSource:     e.KeepSource,
		},
		Storage: Storage{
			History: History{
				Backend: jsonCfg.Storage.History.Backend,
				DSN:     jsonCfg.Storage.History.DSN,
				Path:    jsonCfg.Storage.History.Path,
			},
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
