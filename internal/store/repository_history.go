// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/models"
)

type historyRepository struct {
	*DB
	logger *logger.Logger
}

// NewHistoryRepository returns a SQLite-backed [HistoryRepository].
func NewHistoryRepository(db *DB, logger *logger.Logger) HistoryRepository {
	return &historyRepository{
		DB:     db,
		logger: logger,
	}
}

func (h *historyRepository) SaveRecord(ctx context.Context, record models.HistoryRecord) error {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertHistoryQuery(record)
	if err != nil {
		log.Err(err).Str("func", "historyRepository.SaveRecord").Msg("failed to build insert query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := h.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.SaveRecord").
			Str("id", record.ID).
			Msg("failed to insert history record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Error().
			Str("func", "historyRepository.SaveRecord").
			Str("id", record.ID).
			Msg("history insert affected no rows")
		return ErrHistoryNotSaved
	}

	return nil
}

func (h *historyRepository) ListRecords(ctx context.Context) ([]models.HistoryRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectHistoryQuery()
	if err != nil {
		log.Err(err).Str("func", "historyRepository.ListRecords").Msg("failed to build select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := h.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "historyRepository.ListRecords").Msg("failed to query history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var (
			r                     models.HistoryRecord
			kind, outcome, reason string
			startedAt, duration   int64
		)

		scanErr := rows.Scan(
			&r.ID,
			&r.Target,
			&r.Output,
			&kind,
			&outcome,
			&reason,
			&r.Message,
			&startedAt,
			&duration,
			&r.Files,
			&r.Bytes,
		)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "historyRepository.ListRecords").Msg("failed to scan history row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		r.Kind = models.OperationKind(kind)
		r.Outcome = models.Outcome(outcome)
		r.Reason = models.ErrorKind(reason)
		r.Timestamp = time.Unix(0, startedAt).UTC()
		r.Duration = time.Duration(duration)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "historyRepository.ListRecords").Msg("error iterating history rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}
