package store

import (
	"context"

	"github.com/MKhiriev/go-secure-folder/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// HistoryRepository persists operation history records.
//
// Records are immutable once saved. ListRecords returns them oldest first;
// ordering for display is the caller's concern.
type HistoryRepository interface {
	SaveRecord(ctx context.Context, record models.HistoryRecord) error
	ListRecords(ctx context.Context) ([]models.HistoryRecord, error)
}
