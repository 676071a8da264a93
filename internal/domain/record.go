package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// wireRecord mirrors AnomalyRecord with pointer fields so that absent and
// null fields can be told apart from zero values.
type wireRecord struct {
	Name         *string          `json:"name"`
	Date         *string          `json:"date"`
	Coordinates  *wireCoordinates `json:"coordinates"`
	Value        *float64         `json:"value"`
	Importance   *Weight          `json:"importance"`
	AnomalyLevel *float64         `json:"anomaly_level"`
	Anomalus     *string          `json:"anomalus"`
}

type wireCoordinates struct {
	X *string `json:"x"`
	Y *string `json:"y"`
}

// ParseRecord decodes a single JSON record and checks that all seven
// required fields are present. The anomalus value is not checked here;
// projection defaults unknown values and reports them as diagnostics.
func ParseRecord(data []byte) (AnomalyRecord, error) {
	rec, err := parseRecord(data)
	if err != nil {
		return AnomalyRecord{}, err
	}
	return rec, nil
}

// parseRecord returns whatever fields it managed to decode alongside the
// error so callers can label diagnostics with the record name.
func parseRecord(data []byte) (AnomalyRecord, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return AnomalyRecord{}, malformed(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		var me *MalformedRecordError
		if errors.As(err, &me) {
			return AnomalyRecord{}, me
		}
		return AnomalyRecord{}, fmt.Errorf("decode record: %w", err)
	}

	var rec AnomalyRecord
	if w.Name != nil {
		rec.Name = *w.Name
	}

	switch {
	case w.Name == nil:
		return rec, malformed("name", "required field missing")
	case w.Date == nil:
		return rec, malformed("date", "required field missing")
	case w.Coordinates == nil:
		return rec, malformed("coordinates", "required field missing")
	case w.Coordinates.X == nil:
		return rec, malformed("coordinates.x", "required field missing")
	case w.Coordinates.Y == nil:
		return rec, malformed("coordinates.y", "required field missing")
	case w.Value == nil:
		return rec, malformed("value", "required field missing")
	case w.Importance == nil:
		return rec, malformed("importance", "required field missing")
	case w.AnomalyLevel == nil:
		return rec, malformed("anomaly_level", "required field missing")
	case w.Anomalus == nil:
		return rec, malformed("anomalus", "required field missing")
	}

	rec.Date = *w.Date
	rec.Coordinates = Coordinates{X: *w.Coordinates.X, Y: *w.Coordinates.Y}
	rec.Value = *w.Value
	rec.Importance = *w.Importance
	rec.AnomalyLevel = *w.AnomalyLevel
	rec.Anomalus = Flag(*w.Anomalus)
	return rec, nil
}

// ParseRawEvent deserializes a RawEvent's value into an AnomalyRecord.
func ParseRawEvent(raw RawEvent) (AnomalyRecord, error) {
	rec, err := ParseRecord(raw.Value)
	if err != nil {
		return AnomalyRecord{}, fmt.Errorf("parse raw event: %w", err)
	}
	return rec, nil
}

// DecodeRecords reads a JSON array of records. Elements that fail to parse
// are skipped and reported as diagnostics indexed by their array position.
// A payload whose top level is not an array returns ErrNotCollection.
func DecodeRecords(r io.Reader) ([]AnomalyRecord, []Diagnostic, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode records: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, nil, ErrNotCollection
	}

	records := make([]AnomalyRecord, 0)
	var diags []Diagnostic
	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		rec, err := parseRecord(raw)
		if err != nil {
			diags = append(diags, diagnose(i, rec.Name, err))
			continue
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("decode records: %w", err)
	}
	return records, diags, nil
}

// Validate checks the value domains that decoding leaves open: non-empty
// name and date, parseable coordinates and a yes/no anomalus flag. All
// problems are joined into a single error.
func (r AnomalyRecord) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, malformed("name", "must not be empty"))
	}
	if strings.TrimSpace(r.Date) == "" {
		errs = append(errs, malformed("date", "must not be empty"))
	}
	if _, err := r.Position(); err != nil {
		errs = append(errs, err)
	}
	if !r.Anomalus.Valid() {
		errs = append(errs, malformed("anomalus", "%q is not \"yes\" or \"no\"", string(r.Anomalus)))
	}
	return errors.Join(errs...)
}

// Position parses the record's coordinates as latitude (y) and longitude (x).
// NaN, infinities and values outside WGS-84 bounds cannot be placed on a map
// and are rejected like any other unparseable coordinate.
func (r AnomalyRecord) Position() (LatLng, error) {
	lat, err := parseCoordinate("coordinates.y", "latitude", r.Coordinates.Y, 90)
	if err != nil {
		return LatLng{}, err
	}
	lon, err := parseCoordinate("coordinates.x", "longitude", r.Coordinates.X, 180)
	if err != nil {
		return LatLng{}, err
	}
	return LatLng{Lat: lat, Lon: lon}, nil
}

func parseCoordinate(field, axis, s string, bound float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, malformed(field, "%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed(field, "%q is not a finite number", s)
	}
	if v < -bound || v > bound {
		return 0, malformed(field, "%s %q is out of range [%g, %g]", axis, s, -bound, bound)
	}
	return v, nil
}

// FeatureNames returns the distinct record names in first-seen order.
func FeatureNames(records []AnomalyRecord) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0)
	for i := range records {
		name := records[i].Name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
