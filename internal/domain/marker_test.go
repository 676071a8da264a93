package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIcons = NewIconSet("/icons/marker-icon-blue.png", "/icons/marker-icon-red.png", "/icons/marker-shadow.png")

func tempRecord(date string, flag Flag) AnomalyRecord {
	return AnomalyRecord{
		Name:         testFeature,
		Date:         date,
		Coordinates:  Coordinates{X: "15.1234567", Y: "48.1234567"},
		Value:        5,
		Importance:   NumericWeight(1),
		AnomalyLevel: 0.1,
		Anomalus:     flag,
	}
}

func TestMarkerProjector_Project(t *testing.T) {
	p := NewMarkerProjector(testIcons)

	t.Run("normal record", func(t *testing.T) {
		markers, diags := p.Project([]AnomalyRecord{tempRecord("2021-01-01", FlagNo)})

		assert.Empty(t, diags)
		require.Len(t, markers, 1)
		m := markers[0]
		assert.Equal(t, LatLng{Lat: 48.1234567, Lon: 15.1234567}, m.Position)
		assert.Equal(t, IconDefault, m.IconVariant)
		assert.Equal(t, testIcons.Default, m.Icon)
		assert.Equal(t, testFeature, m.Feature)
		assert.Equal(t, "primary", m.Popup.RowStyle)
		assert.Equal(t, "NO", m.Popup.Anomalus)
		assert.False(t, m.Popup.Anomalous)
	})

	t.Run("anomalous record", func(t *testing.T) {
		markers, diags := p.Project([]AnomalyRecord{tempRecord("2021-01-01", FlagYes)})

		assert.Empty(t, diags)
		require.Len(t, markers, 1)
		m := markers[0]
		assert.Equal(t, IconAnomalous, m.IconVariant)
		assert.Equal(t, testIcons.Anomalous, m.Icon)
		assert.Equal(t, "danger", m.Popup.RowStyle)
		assert.Equal(t, "YES", m.Popup.Anomalus)
		assert.True(t, m.Popup.Anomalous)
	})

	t.Run("popup copies fields and truncates coordinates", func(t *testing.T) {
		rec := tempRecord("2021-01-02", FlagNo)
		rec.Importance = CategoricalWeight("high")
		markers, _ := p.Project([]AnomalyRecord{rec})

		require.Len(t, markers, 1)
		want := PopupFields{
			Name:         testFeature,
			Date:         "2021-01-02",
			Value:        5,
			Importance:   CategoricalWeight("high"),
			AnomalyLevel: 0.1,
			LongitudeX:   "15.1234",
			LatitudeY:    "48.1234",
			Anomalus:     "NO",
			RowStyle:     "primary",
		}
		if diff := cmp.Diff(want, markers[0].Popup); diff != "" {
			t.Fatalf("popup mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("short coordinates are not padded", func(t *testing.T) {
		rec := tempRecord("2021-01-01", FlagNo)
		rec.Coordinates = Coordinates{X: "15.1", Y: "-4"}
		markers, _ := p.Project([]AnomalyRecord{rec})

		require.Len(t, markers, 1)
		assert.Equal(t, "15.1", markers[0].Popup.LongitudeX)
		assert.Equal(t, "-4", markers[0].Popup.LatitudeY)
		assert.Equal(t, LatLng{Lat: -4, Lon: 15.1}, markers[0].Position)
	})

	t.Run("empty input", func(t *testing.T) {
		markers, diags := p.Project(nil)

		assert.NotNil(t, markers)
		assert.Empty(t, markers)
		assert.Empty(t, diags)
	})
}

func TestMarkerProjector_OrderAndLength(t *testing.T) {
	p := NewMarkerProjector(testIcons)
	records := []AnomalyRecord{
		tempRecord("2021-01-01", FlagNo),
		{Name: "humidity", Date: "2021-01-01", Coordinates: Coordinates{X: "16.0", Y: "47.0"}, Anomalus: FlagYes},
		tempRecord("2021-01-02", FlagYes),
		{Name: "wind", Date: "2021-01-01", Coordinates: Coordinates{X: "15.1234567", Y: "48.1234567"}, Anomalus: FlagNo},
	}

	markers, diags := p.Project(records)

	assert.Empty(t, diags)
	require.Len(t, markers, len(records))
	for i := range records {
		assert.Equal(t, records[i].Name, markers[i].Feature, "marker %d", i)
		assert.Equal(t, records[i].Date, markers[i].Popup.Date, "marker %d", i)
	}
	// Co-located markers are kept.
	assert.Equal(t, markers[0].Position, markers[3].Position)
	assert.NotEqual(t, markers[0].Key, markers[3].Key)
}

func TestMarkerProjector_UnknownFlagDefaults(t *testing.T) {
	p := NewMarkerProjector(testIcons)
	records := []AnomalyRecord{
		tempRecord("2021-01-01", "Yes"),
		tempRecord("2021-01-02", FlagYes),
	}

	markers, diags := p.Project(records)

	require.Len(t, markers, 2)
	assert.Equal(t, IconDefault, markers[0].IconVariant)
	assert.Equal(t, IconAnomalous, markers[1].IconVariant)
	require.Len(t, diags, 1)
	assert.Equal(t, 0, diags[0].Index)
	assert.Equal(t, "anomalus", diags[0].Field)
	assert.Equal(t, testFeature, diags[0].Name)
}

func TestMarkerProjector_UnplaceableRecord(t *testing.T) {
	tests := []struct {
		name  string
		x, y  string
		field string
	}{
		{"not a number", "15.1234567", "n/a", "coordinates.y"},
		{"NaN latitude", "15.1234567", "NaN", "coordinates.y"},
		{"infinite latitude", "15.1234567", "Inf", "coordinates.y"},
		{"infinite longitude", "-Infinity", "48.1234567", "coordinates.x"},
		{"latitude out of range", "15.1234567", "90.5", "coordinates.y"},
		{"longitude out of range", "181", "48.1234567", "coordinates.x"},
	}

	p := NewMarkerProjector(testIcons)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := tempRecord("2021-01-02", FlagYes)
			bad.Coordinates = Coordinates{X: tt.x, Y: tt.y}
			records := []AnomalyRecord{tempRecord("2021-01-01", FlagNo), bad, tempRecord("2021-01-03", FlagNo)}

			markers, diags := p.Project(records)

			require.Len(t, markers, 2)
			assert.Equal(t, "2021-01-01", markers[0].Popup.Date)
			assert.Equal(t, "2021-01-03", markers[1].Popup.Date)
			require.Len(t, diags, 1)
			assert.Equal(t, 1, diags[0].Index)
			assert.Equal(t, tt.field, diags[0].Field)

			layer := MarkerLayer{Markers: markers, Diagnostics: diags}
			_, err := json.Marshal(layer)
			assert.NoError(t, err)
		})
	}
}

func TestMarkerProjector_BoundaryCoordinates(t *testing.T) {
	rec := tempRecord("2021-01-01", FlagNo)
	rec.Coordinates = Coordinates{X: "-180", Y: "90"}

	markers, diags := NewMarkerProjector(testIcons).Project([]AnomalyRecord{rec})

	assert.Empty(t, diags)
	require.Len(t, markers, 1)
	assert.Equal(t, LatLng{Lat: 90, Lon: -180}, markers[0].Position)
}

func TestMarkerProjector_Idempotent(t *testing.T) {
	p := NewMarkerProjector(testIcons)
	records := []AnomalyRecord{tempRecord("2021-01-01", FlagNo), tempRecord("2021-01-02", FlagYes)}
	snapshot := append([]AnomalyRecord(nil), records...)

	first, _ := p.Project(records)
	second, _ := p.Project(records)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("projection not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, records); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestMarkerKey(t *testing.T) {
	a := tempRecord("2021-01-01", FlagNo)
	b := tempRecord("2021-01-01", FlagYes)
	c := tempRecord("2021-01-02", FlagNo)

	assert.Equal(t, markerKey(&a), markerKey(&b), "flag does not identify the observation")
	assert.NotEqual(t, markerKey(&a), markerKey(&c))
	assert.Regexp(t, `^mk-[0-9a-f]{16}$`, markerKey(&a))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"longer", "48.1234567", "48.1234"},
		{"exact", "48.1234", "48.1234"},
		{"shorter", "48.1", "48.1"},
		{"empty", "", ""},
		{"multibyte", "ääääääää", "äääääää"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, coordinateDisplayLen))
		})
	}
}

func TestIconSet(t *testing.T) {
	assert.Equal(t, [2]int{25, 41}, testIcons.Default.Size)
	assert.Equal(t, [2]int{12, 41}, testIcons.Anomalous.Anchor)
	assert.Equal(t, "/icons/marker-shadow.png", testIcons.Anomalous.ShadowURL)
	assert.Equal(t, testIcons.Anomalous, testIcons.For(IconAnomalous))
	assert.Equal(t, testIcons.Default, testIcons.For(IconDefault))
	assert.Equal(t, testIcons.Default, testIcons.For("other"))
}
