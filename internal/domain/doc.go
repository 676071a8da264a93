// Package domain models anomaly-detector output and shapes it for the
// dashboard's map and chart renderers.
//
// # Data Source
//
// An upstream detector scores each observation of a named feature and emits
// one flat JSON record per observation, either as a file holding a JSON array
// or as one Kafka message per record on the source topic:
//
//	{"name":"temp","date":"2021-01-01","coordinates":{"x":"15.1234567","y":"48.1234567"},
//	 "value":5,"importance":1,"anomaly_level":0.1,"anomalus":"no"}
//
// All seven fields are required. Anomaly status is pre-computed; nothing in
// this package scores records.
//
// # Conventions
//
// Coordinates:
//
//	Numeric strings. x is longitude, y is latitude. Marker positions are
//	built as (y, x), latitude first. The popup shows the first 7 characters
//	of each string, e.g. "15.1234567" → "15.1234".
//
// Anomalus:
//
//	Exactly "yes" or "no", case-sensitive (the field name keeps the
//	detector's spelling). Any other value is treated as "no" and reported
//	as a [Diagnostic].
//
// Importance:
//
//	Either a number or a categorical label; see [Weight].
//
// Date:
//
//	An opaque label. Records of one feature are assumed to arrive in
//	chronological order; selection preserves input order and never sorts.
//
// # Shaping
//
// [MarkerProjector] turns records into [MarkerDescriptor] values for the map.
// [SeriesSelector] filters records to one feature and produces a [SeriesView]
// for the popup chart, highlighting anomalous points of the value series.
// Both are pure: they never mutate their input and return fresh values.
package domain
