package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkersToGeoJSON exports markers as a FeatureCollection of points. GeoJSON
// orders coordinates [lon, lat], the reverse of MarkerDescriptor.Position.
func MarkersToGeoJSON(markers []MarkerDescriptor) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range markers {
		m := &markers[i]
		f := geojson.NewFeature(orb.Point{m.Position.Lon, m.Position.Lat})
		f.ID = m.Key
		f.Properties = geojson.Properties{
			"feature":       m.Feature,
			"icon_variant":  string(m.IconVariant),
			"icon_url":      m.Icon.URL,
			"date":          m.Popup.Date,
			"value":         m.Popup.Value,
			"importance":    m.Popup.Importance.String(),
			"anomaly_level": m.Popup.AnomalyLevel,
			"anomalus":      m.Popup.Anomalus,
		}
		fc.Append(f)
	}
	return fc
}
