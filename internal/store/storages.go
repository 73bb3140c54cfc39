package store

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/config"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
)

// ClientStorages groups the client-side repositories passed to the service
// layer.
type ClientStorages struct {
	// History is nil for the memory backend: records then live only in the
	// running engine.
	History HistoryRepository

	// Degraded is set when the configured backend could not be opened and
	// the memory backend is used instead.
	Degraded error

	db *DB
}

// NewClientStorages opens the history backend selected by cfg.
//
// For the sqlite backend it opens (and creates if needed) the database at
// cfg.History.DSN and runs pending migrations. A database that cannot be
// opened or migrated is logged and replaced by the memory backend, so a
// damaged history never keeps the engine from starting. The file backend
// appends JSON lines to cfg.History.Path on fsys.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, fsys afero.Fs, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Str("backend", cfg.History.Backend).Msg("creating new storages...")

	switch cfg.History.Backend {
	case config.HistoryBackendSQLite:
		db, err := NewConnectSQLite(ctx, cfg.History.DSN, logger)
		if err != nil {
			return degraded(fmt.Errorf("%w: sqlite connection error: %w", ErrHistoryUnavailable, err), logger), nil
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return degraded(fmt.Errorf("%w: migration failed: %w", ErrHistoryUnavailable, err), logger), nil
		}
		return &ClientStorages{History: NewHistoryRepository(db, logger), db: db}, nil

	case config.HistoryBackendFile:
		return &ClientStorages{History: NewFileHistoryRepository(fsys, cfg.History.Path, logger)}, nil

	case config.HistoryBackendMemory:
		return &ClientStorages{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHistoryBackend, cfg.History.Backend)
	}
}

func degraded(err error, logger *logger.Logger) *ClientStorages {
	logger.Warn().Err(err).Str("func", "NewClientStorages").Msg("history database unavailable, keeping history in memory")
	return &ClientStorages{Degraded: err}
}

// Close releases the database connection, if any.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
