// Package store keeps a bounded, in-memory window of the most recent anomaly
// records and serves cached per-feature series views over it.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
	"github.com/couchcryptid/anomaly-map-etl/internal/observability"
)

// RecordStore holds records in arrival order. When full, the oldest records
// are dropped. Every load bumps Version, which invalidates cached series.
type RecordStore struct {
	mu         sync.RWMutex
	records    []domain.AnomalyRecord
	maxRecords int
	version    uint64
	updatedAt  time.Time

	selector *domain.SeriesSelector
	series   *seriesCache
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Records   []domain.AnomalyRecord
	Version   uint64
	UpdatedAt time.Time
}

// New creates a RecordStore keeping at most maxRecords records and caching up
// to cacheSize series views.
func New(maxRecords, cacheSize int, selector *domain.SeriesSelector, logger *slog.Logger, metrics *observability.Metrics) *RecordStore {
	return &RecordStore{
		maxRecords: maxRecords,
		records:    make([]domain.AnomalyRecord, 0),
		selector:   selector,
		series:     newSeriesCache(cacheSize),
		logger:     logger,
		metrics:    metrics,
	}
}

// LoadBatch appends records in order, evicting the oldest beyond capacity.
func (s *RecordStore) LoadBatch(_ context.Context, records []domain.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	s.records = append(s.records, records...)
	evicted := 0
	if over := len(s.records) - s.maxRecords; over > 0 {
		evicted = over
		// Copy so the dropped prefix is released.
		s.records = append(make([]domain.AnomalyRecord, 0, s.maxRecords), s.records[over:]...)
	}
	s.version++
	s.updatedAt = domain.Now()
	size := len(s.records)
	version := s.version
	s.mu.Unlock()

	dropped := s.series.dropBefore(version)

	s.metrics.StoreRecords.Set(float64(size))
	s.logger.Debug("records stored",
		"loaded", len(records),
		"evicted", evicted,
		"size", size,
		"version", version,
		"series_dropped", dropped,
	)
	return nil
}

// Snapshot returns a copy of the current records.
func (s *RecordStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Records:   append(make([]domain.AnomalyRecord, 0, len(s.records)), s.records...),
		Version:   s.version,
		UpdatedAt: s.updatedAt,
	}
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version returns the current store version. It starts at 0 and increases
// with every non-empty load.
func (s *RecordStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Series returns the series view of one feature over the current records.
// Results are cached per feature and store version; callers get their own
// copy and may modify it.
func (s *RecordStore) Series(featureName string) (domain.SeriesView, []domain.Diagnostic) {
	s.mu.RLock()
	key := seriesKey{version: s.version, feature: featureName}
	if cached, ok := s.series.get(key); ok {
		s.mu.RUnlock()
		s.metrics.SeriesCache.WithLabelValues("hit").Inc()
		return cached.clone()
	}
	view, diags := s.selector.Select(s.records, featureName)
	s.mu.RUnlock()

	s.metrics.SeriesCache.WithLabelValues("miss").Inc()
	sel := selection{view: view, diags: diags}
	s.series.put(key, sel)
	return sel.clone()
}

func (sel selection) clone() (domain.SeriesView, []domain.Diagnostic) {
	view := sel.view
	view.Series = slices.Clone(sel.view.Series)
	view.Points = slices.Clone(sel.view.Points)
	return view, slices.Clone(sel.diags)
}
