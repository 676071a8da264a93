package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// coordinateDisplayLen is how many characters of each coordinate the popup shows.
const coordinateDisplayLen = 7

// IconVariant selects which marker icon a renderer draws.
type IconVariant string

const (
	IconDefault   IconVariant = "default"
	IconAnomalous IconVariant = "anomalous"
)

// Icon is a renderer-agnostic marker icon reference. Size and Anchor are in
// pixels; anchoring at the bottom centre keeps markers fixed while zooming.
type Icon struct {
	URL       string `json:"iconUrl"`
	ShadowURL string `json:"shadowUrl,omitempty"`
	Size      [2]int `json:"iconSize"`
	Anchor    [2]int `json:"iconAnchor"`
}

// IconSet carries the two icon references a MarkerProjector chooses from.
type IconSet struct {
	Default   Icon `json:"default"`
	Anomalous Icon `json:"anomalous"`
}

// NewIconSet builds the standard 25x41 pin icons sharing one shadow image.
func NewIconSet(defaultURL, anomalousURL, shadowURL string) IconSet {
	pin := func(url string) Icon {
		return Icon{
			URL:       url,
			ShadowURL: shadowURL,
			Size:      [2]int{25, 41},
			Anchor:    [2]int{12, 41},
		}
	}
	return IconSet{Default: pin(defaultURL), Anomalous: pin(anomalousURL)}
}

// For returns the icon for a variant.
func (s IconSet) For(v IconVariant) Icon {
	if v == IconAnomalous {
		return s.Anomalous
	}
	return s.Default
}

// LatLng is a WGS-84 position in map order: latitude first.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PopupFields is the feature-info table shown when a marker is opened.
type PopupFields struct {
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	Value        float64 `json:"value"`
	Importance   Weight  `json:"importance"`
	AnomalyLevel float64 `json:"anomaly_level"`
	LongitudeX   string  `json:"longitude_x"`
	LatitudeY    string  `json:"latitude_y"`
	Anomalus     string  `json:"anomalus"`
	Anomalous    bool    `json:"anomalous"`
	RowStyle     string  `json:"row_style"`
}

// MarkerDescriptor is one record rendered as a positioned map marker.
// Feature names the series the marker's popup chart should select.
type MarkerDescriptor struct {
	Key         string      `json:"key"`
	Position    LatLng      `json:"position"`
	IconVariant IconVariant `json:"icon_variant"`
	Icon        Icon        `json:"icon"`
	Popup       PopupFields `json:"popup"`
	Feature     string      `json:"feature"`
}

// MarkerProjector turns anomaly records into map marker descriptors.
type MarkerProjector struct {
	icons IconSet
}

// NewMarkerProjector creates a projector drawing icons from the given set.
func NewMarkerProjector(icons IconSet) *MarkerProjector {
	return &MarkerProjector{icons: icons}
}

// Project returns one marker per record, in input order. Co-located records
// are kept; clustering is the renderer's job.
//
// An anomalus value other than "yes" or "no" falls back to the default icon
// and is reported as a diagnostic. A record whose coordinates do not parse
// cannot be placed: its marker is omitted and a diagnostic is reported.
func (p *MarkerProjector) Project(records []AnomalyRecord) ([]MarkerDescriptor, []Diagnostic) {
	markers := make([]MarkerDescriptor, 0, len(records))
	var diags []Diagnostic

	// Casers are stateful; one per call keeps Project safe for concurrent use.
	upper := cases.Upper(language.Und)

	for i := range records {
		rec := &records[i]

		pos, err := rec.Position()
		if err != nil {
			diags = append(diags, diagnose(i, rec.Name, err))
			continue
		}

		if !rec.Anomalus.Valid() {
			diags = append(diags, Diagnostic{
				Index:  i,
				Name:   rec.Name,
				Field:  "anomalus",
				Reason: fmt.Sprintf("%q is not \"yes\" or \"no\", using default icon", string(rec.Anomalus)),
			})
		}

		variant := IconDefault
		rowStyle := "primary"
		if rec.Anomalus.IsAnomalous() {
			variant = IconAnomalous
			rowStyle = "danger"
		}

		markers = append(markers, MarkerDescriptor{
			Key:         markerKey(rec),
			Position:    pos,
			IconVariant: variant,
			Icon:        p.icons.For(variant),
			Feature:     rec.Name,
			Popup: PopupFields{
				Name:         rec.Name,
				Date:         rec.Date,
				Value:        rec.Value,
				Importance:   rec.Importance,
				AnomalyLevel: rec.AnomalyLevel,
				LongitudeX:   truncate(rec.Coordinates.X, coordinateDisplayLen),
				LatitudeY:    truncate(rec.Coordinates.Y, coordinateDisplayLen),
				Anomalus:     upper.String(string(rec.Anomalus)),
				Anomalous:    rec.Anomalus.IsAnomalous(),
				RowStyle:     rowStyle,
			},
		})
	}

	return markers, diags
}

// truncate keeps the first n characters of s. Shorter strings are returned as is.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// markerKey derives a deterministic key from the fields that identify an
// observation, so the same record always maps to the same Kafka partition
// and renderer key.
func markerKey(rec *AnomalyRecord) string {
	input := fmt.Sprintf("%s|%s|%s|%s", rec.Name, rec.Date, rec.Coordinates.X, rec.Coordinates.Y)
	hash := sha256.Sum256([]byte(input))
	return "mk-" + hex.EncodeToString(hash[:8])
}
