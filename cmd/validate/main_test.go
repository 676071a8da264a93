package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
	"github.com/stretchr/testify/assert"
)

func rec(name, date, x, y string, flag domain.Flag) domain.AnomalyRecord {
	return domain.AnomalyRecord{
		Name:        name,
		Date:        date,
		Coordinates: domain.Coordinates{X: x, Y: y},
		Anomalus:    flag,
	}
}

func TestValidateFlags(t *testing.T) {
	p := validateFlags([]domain.AnomalyRecord{
		rec("temp", "2021-01-01", "1", "1", domain.FlagYes),
		rec("temp", "2021-01-02", "1", "1", "Yes"),
	})

	assert.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "record 1")
}

func TestValidateCoordinates(t *testing.T) {
	p := validateCoordinates([]domain.AnomalyRecord{
		rec("temp", "2021-01-01", "15.1", "48.1", domain.FlagNo),
		rec("temp", "2021-01-02", "15.1", "91", domain.FlagNo),
		rec("temp", "2021-01-03", "east", "48.1", domain.FlagNo),
		rec("temp", "2021-01-04", "15.1", "NaN", domain.FlagNo),
	})

	assert.Len(t, p.errors, 3)
	assert.Contains(t, p.errors[0], "latitude")
	assert.Contains(t, p.errors[1], "coordinates.x")
	assert.Contains(t, p.errors[2], "not a finite number")
}

func TestValidateDateOrder(t *testing.T) {
	p := validateDateOrder([]domain.AnomalyRecord{
		rec("temp", "2021-01-02", "1", "1", domain.FlagNo),
		rec("humidity", "2021-01-01", "1", "1", domain.FlagNo),
		rec("temp", "2021-01-01", "1", "1", domain.FlagNo),
		rec("temp", "2021-01-03", "1", "1", domain.FlagNo),
	})

	assert.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "feature temp")
}

func TestValidateProjection(t *testing.T) {
	p := validateProjection([]domain.AnomalyRecord{
		rec("temp", "2021-01-01", "15.1", "48.1", domain.FlagYes),
		rec("temp", "2021-01-02", "15.1", "bad", domain.FlagYes),
		rec("humidity", "2021-01-01", "15.1", "48.1", "maybe"),
	})

	assert.True(t, p.passed(), "errors: %v", p.errors)
}

func TestRun_MockData(t *testing.T) {
	assert.Equal(t, 0, run(filepath.Join("..", "..", "data", "mock", "anomaly_records.json")))
}

func TestRun_NotAnArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"name":"temp"}`), 0o600))

	assert.Equal(t, 1, run(path))
}
