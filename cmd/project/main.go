// Command project runs the marker projection and series selection offline
// over a records file, the same way the service shapes records from Kafka.
// It writes marker JSON, a GeoJSON FeatureCollection and, optionally, one
// feature's series view, then prints per-feature stats.
//
// Usage:
//
//	go run ./cmd/project \
//	  -in data/mock/anomaly_records.json \
//	  -markers-out out/markers.json \
//	  -geojson-out out/markers.geojson \
//	  -feature temp -series-out out/temp_series.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/anomaly-map-etl/internal/config"
	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "records file holding a JSON array of anomaly records")
	markersOut := flag.String("markers-out", "", "output path for the marker layer JSON")
	geojsonOut := flag.String("geojson-out", "", "output path for the GeoJSON FeatureCollection")
	feature := flag.String("feature", "", "feature to select a series for")
	seriesOut := flag.String("series-out", "", "output path for the selected feature's series view")
	flag.Parse()

	if *in == "" || (*markersOut == "" && *geojsonOut == "") {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in and one of -markers-out, -geojson-out")
	}
	if (*feature == "") != (*seriesOut == "") {
		return fmt.Errorf("-feature and -series-out must be given together")
	}

	// Icons and map view come from the same env settings the service reads.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	records, decodeDiags, err := readRecords(*in)
	if err != nil {
		return err
	}
	log.Printf("read %d records from %s", len(records), *in)
	logDiagnostics("decode", decodeDiags)

	projector := domain.NewMarkerProjector(cfg.Icons())
	markers, projectDiags := projector.Project(records)
	logDiagnostics("project", projectDiags)

	if *markersOut != "" {
		layer := domain.MarkerLayer{
			View:        cfg.MapView(),
			Markers:     markers,
			Diagnostics: projectDiags,
		}
		if err := writeJSON(*markersOut, layer); err != nil {
			return fmt.Errorf("writing markers: %w", err)
		}
		log.Printf("wrote %d markers: %s", len(markers), *markersOut)
	}

	if *geojsonOut != "" {
		if err := writeJSON(*geojsonOut, domain.MarkersToGeoJSON(markers)); err != nil {
			return fmt.Errorf("writing geojson: %w", err)
		}
		log.Printf("wrote geojson: %s", *geojsonOut)
	}

	if *feature != "" {
		view, diags := domain.NewSeriesSelector().Select(records, *feature)
		logDiagnostics("select", diags)
		if view.Empty() {
			log.Printf("feature %q has no records; writing an empty series", *feature)
		}
		if err := writeJSON(*seriesOut, view); err != nil {
			return fmt.Errorf("writing series: %w", err)
		}
		log.Printf("wrote %d series points: %s", len(view.Points), *seriesOut)
	}

	printStats(records, markers)
	return nil
}

func readRecords(path string) ([]domain.AnomalyRecord, []domain.Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	records, diags, err := domain.DecodeRecords(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, diags, nil
}

func logDiagnostics(stage string, diags []domain.Diagnostic) {
	for _, d := range diags {
		log.Printf("%s: %s", stage, d)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type featureStats struct {
	records   int
	anomalous int
	minValue  float64
	maxValue  float64
}

func printStats(records []domain.AnomalyRecord, markers []domain.MarkerDescriptor) {
	names := domain.FeatureNames(records)
	stats := make(map[string]*featureStats, len(names))
	for i := range records {
		r := &records[i]
		s, ok := stats[r.Name]
		if !ok {
			s = &featureStats{minValue: r.Value, maxValue: r.Value}
			stats[r.Name] = s
		}
		s.records++
		if r.Anomalus.IsAnomalous() {
			s.anomalous++
		}
		s.minValue = min(s.minValue, r.Value)
		s.maxValue = max(s.maxValue, r.Value)
	}

	anomalousMarkers := 0
	for i := range markers {
		if markers[i].IconVariant == domain.IconAnomalous {
			anomalousMarkers++
		}
	}

	fmt.Println("\n=== Projection stats ===")
	fmt.Printf("Records: %d, markers: %d (%d anomalous)\n", len(records), len(markers), anomalousMarkers)
	fmt.Printf("Features (%d):\n", len(names))
	for _, name := range names {
		s := stats[name]
		fmt.Printf("  %-16s records=%-4d anomalous=%-3d value=[%g, %g]\n",
			name, s.records, s.anomalous, s.minValue, s.maxValue)
	}
}
