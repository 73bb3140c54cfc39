package service

import (
	"context"
	"slices"
	"sync"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/store"
	"github.com/MKhiriev/go-secure-folder/models"
)

// historyLog keeps finished operations in memory, oldest first, and mirrors
// each append to the optional repository. Persistence failures never fail
// an operation.
type historyLog struct {
	mu      sync.Mutex
	records []models.HistoryRecord
	repo    store.HistoryRepository
	logger  *logger.Logger
}

// newHistoryLog loads persisted records. A read failure starts with an
// empty history.
func newHistoryLog(ctx context.Context, repo store.HistoryRepository, log *logger.Logger) *historyLog {
	h := &historyLog{repo: repo, logger: log}
	if repo == nil {
		return h
	}

	records, err := repo.ListRecords(ctx)
	if err != nil {
		log.Warn().Err(err).Str("func", "historyLog.load").Msg("history could not be read, starting empty")
		return h
	}
	h.records = records
	return h
}

func (h *historyLog) Append(ctx context.Context, r models.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, r)
	if h.repo == nil {
		return
	}
	if err := h.repo.SaveRecord(context.WithoutCancel(ctx), r); err != nil {
		h.logger.Warn().Err(err).Str("func", "historyLog.Append").Str("op", r.ID).Msg("history record not persisted")
	}
}

// List returns a copy, most recent first.
func (h *historyLog) List() []models.HistoryRecord {
	h.mu.Lock()
	out := slices.Clone(h.records)
	h.mu.Unlock()

	slices.Reverse(out)
	return out
}
