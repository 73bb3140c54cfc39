package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secure-folder/models"
)

const historyTable = "history"

var historyColumns = []string{
	"id",
	"target",
	"output",
	"kind",
	"outcome",
	"reason",
	"message",
	"started_at",
	"duration_ns",
	"files",
	"bytes",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildInsertHistoryQuery(r models.HistoryRecord) (string, []any, error) {
	return psql.Insert(historyTable).
		Columns(historyColumns...).
		Values(
			r.ID,
			r.Target,
			r.Output,
			string(r.Kind),
			string(r.Outcome),
			string(r.Reason),
			r.Message,
			r.Timestamp.UnixNano(),
			int64(r.Duration),
			r.Files,
			r.Bytes,
		).
		ToSql()
}

func buildSelectHistoryQuery() (string, []any, error) {
	return psql.Select(historyColumns...).
		From(historyTable).
		OrderBy("seq ASC").
		ToSql()
}
