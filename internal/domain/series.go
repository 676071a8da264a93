package domain

import (
	"fmt"
	"hash/fnv"
)

// SeriesKind tells the chart renderer how to draw a series.
type SeriesKind string

const (
	SeriesNumeric     SeriesKind = "numeric"
	SeriesCategorical SeriesKind = "categorical"
)

// Series keys, in legend order.
const (
	SeriesValue        = "value"
	SeriesImportance   = "importance"
	SeriesAnomalyLevel = "anomaly_level"
	SeriesAnomalus     = "anomalus"
)

// darkPalette holds the colours the value line is drawn in.
var darkPalette = []string{
	"#1B3A6B", "#5B1A5E", "#0F5132", "#7A2E0E", "#3D2C8D",
	"#134E4A", "#6B2737", "#2F3E46", "#4A3B12", "#1E3F5A",
}

// Series describes one line of the feature chart. Decorated marks the single
// series whose anomalous points get a highlight marker.
type Series struct {
	Key       string     `json:"key"`
	Kind      SeriesKind `json:"kind"`
	Decorated bool       `json:"decorated"`
	Color     string     `json:"color,omitempty"`
}

// SeriesPoint is one record of the selected feature, keyed on the x axis by Date.
type SeriesPoint struct {
	Date         string  `json:"date"`
	Value        float64 `json:"value"`
	Importance   Weight  `json:"importance"`
	AnomalyLevel float64 `json:"anomaly_level"`
	Anomalus     Flag    `json:"anomalus"`
	Highlight    bool    `json:"highlight"`
}

// SeriesView is the render-ready time series of a single feature.
type SeriesView struct {
	Feature string        `json:"feature"`
	XAxis   string        `json:"x_axis"`
	Series  []Series      `json:"series"`
	Points  []SeriesPoint `json:"points"`
}

// Empty reports whether no record matched the selected feature.
func (v SeriesView) Empty() bool {
	return len(v.Points) == 0
}

// Decorate reports whether point i of the named series gets the highlight
// marker. Only value points of anomalous records are decorated.
func (v SeriesView) Decorate(seriesKey string, i int) bool {
	if seriesKey != SeriesValue || i < 0 || i >= len(v.Points) {
		return false
	}
	return v.Points[i].Highlight
}

// SeriesSelector filters records down to one feature's time series.
type SeriesSelector struct {
	palette []string
}

// NewSeriesSelector creates a selector. The value line colour is picked from
// palette by feature name; an empty palette uses the built-in dark colours.
func NewSeriesSelector(palette ...string) *SeriesSelector {
	if len(palette) == 0 {
		palette = darkPalette
	}
	return &SeriesSelector{palette: palette}
}

// Select returns the records named featureName in input order. Names match
// exactly. An unknown feature yields an empty view, not an error.
// Records with an anomalus value other than "yes" or "no" stay in the series
// undecorated and are reported as diagnostics.
func (s *SeriesSelector) Select(records []AnomalyRecord, featureName string) (SeriesView, []Diagnostic) {
	view := SeriesView{
		Feature: featureName,
		XAxis:   "date",
		Series:  s.seriesFor(featureName),
		Points:  make([]SeriesPoint, 0),
	}
	var diags []Diagnostic

	for i := range records {
		rec := &records[i]
		if rec.Name != featureName {
			continue
		}
		if !rec.Anomalus.Valid() {
			diags = append(diags, Diagnostic{
				Index:  i,
				Name:   rec.Name,
				Field:  "anomalus",
				Reason: fmt.Sprintf("%q is not \"yes\" or \"no\", point left undecorated", string(rec.Anomalus)),
			})
		}
		view.Points = append(view.Points, SeriesPoint{
			Date:         rec.Date,
			Value:        rec.Value,
			Importance:   rec.Importance,
			AnomalyLevel: rec.AnomalyLevel,
			Anomalus:     rec.Anomalus,
			Highlight:    rec.Anomalus.IsAnomalous(),
		})
	}

	return view, diags
}

// seriesFor lists the four chart series. The anomalus flag is categorical,
// so renderers draw it as markers rather than a numeric line.
func (s *SeriesSelector) seriesFor(featureName string) []Series {
	return []Series{
		{Key: SeriesValue, Kind: SeriesNumeric, Decorated: true, Color: s.colorFor(featureName)},
		{Key: SeriesImportance, Kind: SeriesNumeric},
		{Key: SeriesAnomalyLevel, Kind: SeriesNumeric},
		{Key: SeriesAnomalus, Kind: SeriesCategorical},
	}
}

// colorFor hashes the feature name into the palette so a feature keeps the
// same colour across renders.
func (s *SeriesSelector) colorFor(featureName string) string {
	h := fnv.New32a()
	h.Write([]byte(featureName)) //nolint:errcheck // hash.Hash never returns an error
	return s.palette[h.Sum32()%uint32(len(s.palette))]
}
