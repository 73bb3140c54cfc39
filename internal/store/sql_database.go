package store

import (
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/migrations"
)

// DB is the history database handle shared by the sqlite repository.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate brings the history schema up to date.
func (db *DB) Migrate() error {
	if err := migrations.Migrate(db.DB); err != nil {
		db.logger.Err(err).Str("func", "DB.Migrate").Msg("history schema migration failed")
		return fmt.Errorf("migrate history schema: %w", err)
	}
	db.logger.Debug().Str("func", "DB.Migrate").Msg("history schema is up to date")
	return nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close history database: %w", err)
	}
	return nil
}
