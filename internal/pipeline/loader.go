package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
)

// MultiLoader hands each batch to several loaders in order. The first
// failure aborts the batch, so loaders that cannot tolerate redelivery
// belong at the end.
type MultiLoader struct {
	loaders []BatchLoader
}

// NewMultiLoader creates a fan-out loader. Nil loaders are ignored.
func NewMultiLoader(loaders ...BatchLoader) *MultiLoader {
	m := &MultiLoader{}
	for _, l := range loaders {
		if l != nil {
			m.loaders = append(m.loaders, l)
		}
	}
	return m
}

func (m *MultiLoader) LoadBatch(ctx context.Context, records []domain.AnomalyRecord) error {
	for i, l := range m.loaders {
		if err := l.LoadBatch(ctx, records); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
