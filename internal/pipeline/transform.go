package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
)

// RecordTransformer implements Transformer by decoding each message as one
// anomaly record.
type RecordTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a RecordTransformer.
func NewTransformer(logger *slog.Logger) *RecordTransformer {
	return &RecordTransformer{logger: logger}
}

func (t *RecordTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.AnomalyRecord, error) {
	rec, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.AnomalyRecord{}, err
	}
	t.logger.Debug("record decoded",
		"name", rec.Name,
		"date", rec.Date,
		"offset", raw.Offset,
	)
	return rec, nil
}
