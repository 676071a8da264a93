// Package dashboard is the read model behind the map and chart renderers.
// It projects the stored record window into marker layers and series views.
package dashboard

import (
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
	"github.com/couchcryptid/anomaly-map-etl/internal/store"
	"github.com/paulmach/orb/geojson"
)

// RecordSource provides the current record window and cached series views.
type RecordSource interface {
	Snapshot() store.Snapshot
	Series(featureName string) (domain.SeriesView, []domain.Diagnostic)
}

// FeatureSummary describes one feature present in the record window.
type FeatureSummary struct {
	Name      string `json:"name"`
	Records   int    `json:"records"`
	Anomalous int    `json:"anomalous"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
}

// Dashboard composes the record source with the marker projector.
type Dashboard struct {
	source    RecordSource
	projector *domain.MarkerProjector
	view      domain.MapView
	logger    *slog.Logger

	mu    sync.Mutex
	layer *projectedLayer
}

type projectedLayer struct {
	version   uint64
	updatedAt time.Time
	layer     domain.MarkerLayer
}

// New creates a Dashboard over source that renders into view.
func New(source RecordSource, projector *domain.MarkerProjector, view domain.MapView, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		source:    source,
		projector: projector,
		view:      view,
		logger:    logger,
	}
}

// View returns the configured initial map view.
func (d *Dashboard) View() domain.MapView {
	return d.view
}

// Layer projects the current records into a marker layer. The projection is
// reused until the record window changes.
func (d *Dashboard) Layer() (domain.MarkerLayer, time.Time) {
	snap := d.source.Snapshot()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.layer != nil && d.layer.version == snap.Version {
		return d.layer.layer, d.layer.updatedAt
	}

	markers, diags := d.projector.Project(snap.Records)
	if len(diags) > 0 {
		d.logger.Warn("records skipped or defaulted in marker layer",
			"version", snap.Version,
			"diagnostics", len(diags),
			"first", diags[0].String(),
		)
	}
	d.layer = &projectedLayer{
		version:   snap.Version,
		updatedAt: snap.UpdatedAt,
		layer:     domain.MarkerLayer{View: d.view, Markers: markers, Diagnostics: diags},
	}
	return d.layer.layer, snap.UpdatedAt
}

// GeoJSON exports the current marker layer as a FeatureCollection.
func (d *Dashboard) GeoJSON() *geojson.FeatureCollection {
	layer, _ := d.Layer()
	return domain.MarkersToGeoJSON(layer.Markers)
}

// Series returns the chart series of one feature.
func (d *Dashboard) Series(featureName string) (domain.SeriesView, []domain.Diagnostic) {
	return d.source.Series(featureName)
}

// Features summarizes each feature in first-seen order.
func (d *Dashboard) Features() []FeatureSummary {
	snap := d.source.Snapshot()

	index := make(map[string]int)
	summaries := make([]FeatureSummary, 0)
	for i := range snap.Records {
		rec := &snap.Records[i]
		pos, ok := index[rec.Name]
		if !ok {
			pos = len(summaries)
			index[rec.Name] = pos
			summaries = append(summaries, FeatureSummary{Name: rec.Name, FirstDate: rec.Date})
		}
		s := &summaries[pos]
		s.Records++
		s.LastDate = rec.Date
		if rec.Anomalus.IsAnomalous() {
			s.Anomalous++
		}
	}
	return summaries
}
