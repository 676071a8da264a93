package domain

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Coordinates holds the record position exactly as the detector emits it:
// numeric strings, x = longitude and y = latitude.
type Coordinates struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Flag is the pre-computed anomaly classification of a record.
type Flag string

const (
	FlagYes Flag = "yes"
	FlagNo  Flag = "no"
)

// Valid reports whether f is one of the two accepted values. Comparison is
// case-sensitive.
func (f Flag) Valid() bool {
	return f == FlagYes || f == FlagNo
}

// IsAnomalous reports whether f is exactly "yes".
func (f Flag) IsAnomalous() bool {
	return f == FlagYes
}

// Weight is a record's importance, which upstream emits either as a number
// or as a categorical label.
type Weight struct {
	Number  float64
	Label   string
	Numeric bool
}

// NumericWeight returns a numeric importance.
func NumericWeight(v float64) Weight {
	return Weight{Number: v, Numeric: true}
}

// CategoricalWeight returns a labelled importance.
func CategoricalWeight(label string) Weight {
	return Weight{Label: label}
}

// Float returns the numeric value and whether the weight is numeric.
func (w Weight) Float() (float64, bool) {
	return w.Number, w.Numeric
}

func (w Weight) String() string {
	if w.Numeric {
		return strconv.FormatFloat(w.Number, 'f', -1, 64)
	}
	return w.Label
}

func (w Weight) MarshalJSON() ([]byte, error) {
	if w.Numeric {
		return json.Marshal(w.Number)
	}
	return json.Marshal(w.Label)
}

func (w *Weight) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*w = NumericWeight(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = CategoricalWeight(s)
		return nil
	}
	return malformed("importance", "must be a number or a string")
}

// AnomalyRecord is one observation of a named feature at a point in time.
// A feature has many records; Date orders them and labels the chart axis.
type AnomalyRecord struct {
	Name         string      `json:"name"`
	Date         string      `json:"date"`
	Coordinates  Coordinates `json:"coordinates"`
	Value        float64     `json:"value"`
	Importance   Weight      `json:"importance"`
	AnomalyLevel float64     `json:"anomaly_level"`
	Anomalus     Flag        `json:"anomalus"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// MarkerEvent is the payload published for each projected marker.
type MarkerEvent struct {
	Marker      MarkerDescriptor `json:"marker"`
	ProcessedAt time.Time        `json:"processed_at"`
}
