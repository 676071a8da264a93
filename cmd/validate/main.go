// Command validate performs data integrity checks on a records file before it
// is replayed into the source topic or projected offline. It verifies the
// file structure, required fields, anomaly flags, coordinates, per-feature
// date order, and that projection and selection agree with the records.
//
// Usage:
//
//	go run ./cmd/validate -records data/mock/anomaly_records.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
)

const isoDate = "2006-01-02"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	recordsPath := flag.String("records", "", "path to a JSON array of anomaly records")
	flag.Parse()

	if *recordsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*recordsPath))
}

func run(path string) int {
	fmt.Println("=== Anomaly Record Integrity Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open records: %v\n", err)
		return 1
	}
	records, decodeDiags, err := domain.DecodeRecords(f)
	f.Close()

	structure := &phase{name: "Phase 1: File structure"}
	if err != nil {
		if errors.Is(err, domain.ErrNotCollection) {
			structure.errorf("top-level value must be a JSON array")
		} else {
			structure.errorf("decode: %v", err)
		}
		report([]*phase{structure}, 0)
		return 1
	}

	phases := []*phase{
		structure,
		validateRequiredFields(decodeDiags),
		validateFlags(records),
		validateCoordinates(records),
		validateDateOrder(records),
		validateProjection(records),
	}
	return report(phases, len(records))
}

func report(phases []*phase, recordCount int) int {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d decoded\n", recordCount)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRequiredFields reports elements that failed to decode.
func validateRequiredFields(diags []domain.Diagnostic) *phase {
	p := &phase{name: "Phase 2: Required fields"}
	for _, d := range diags {
		p.errorf("%s", d)
	}
	return p
}

func validateFlags(records []domain.AnomalyRecord) *phase {
	p := &phase{name: "Phase 3: Anomaly flags"}
	for i := range records {
		if !records[i].Anomalus.Valid() {
			p.errorf("record %d (%s): anomalus %q is not \"yes\" or \"no\"", i, records[i].Name, records[i].Anomalus)
		}
	}
	return p
}

func validateCoordinates(records []domain.AnomalyRecord) *phase {
	p := &phase{name: "Phase 4: Coordinates"}
	for i := range records {
		if _, err := records[i].Position(); err != nil {
			p.errorf("record %d (%s): %v", i, records[i].Name, err)
		}
	}
	return p
}

// validateDateOrder checks that each feature's records arrive in
// chronological order. ISO dates are compared as dates, anything else as text.
func validateDateOrder(records []domain.AnomalyRecord) *phase {
	p := &phase{name: "Phase 5: Chronological order per feature"}
	last := make(map[string]int)
	for i := range records {
		r := &records[i]
		prev, ok := last[r.Name]
		last[r.Name] = i
		if !ok {
			continue
		}
		if dateBefore(r.Date, records[prev].Date) {
			p.errorf("feature %s: record %d date %q precedes record %d date %q",
				r.Name, i, r.Date, prev, records[prev].Date)
		}
	}
	return p
}

func dateBefore(a, b string) bool {
	ta, errA := time.Parse(isoDate, a)
	tb, errB := time.Parse(isoDate, b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}

// validateProjection checks that projection and selection agree with the
// records: one marker per placeable record, one anomalous marker per "yes"
// flag, and every feature's series holding all of its records.
func validateProjection(records []domain.AnomalyRecord) *phase {
	p := &phase{name: "Phase 6: Projection consistency"}

	markers, diags := domain.NewMarkerProjector(domain.NewIconSet("default", "anomalous", "")).Project(records)

	unplaced := 0
	for _, d := range diags {
		if d.Field != "anomalus" {
			unplaced++
		}
	}
	if len(markers)+unplaced != len(records) {
		p.errorf("markers=%d unplaced=%d records=%d", len(markers), unplaced, len(records))
	}

	wantAnomalous, gotAnomalous := 0, 0
	for i := range records {
		if records[i].Anomalus.IsAnomalous() {
			if _, err := records[i].Position(); err == nil {
				wantAnomalous++
			}
		}
	}
	for i := range markers {
		if markers[i].IconVariant == domain.IconAnomalous {
			gotAnomalous++
		}
	}
	if wantAnomalous != gotAnomalous {
		p.errorf("anomalous markers=%d, placeable \"yes\" records=%d", gotAnomalous, wantAnomalous)
	}

	selector := domain.NewSeriesSelector()
	counts := make(map[string]int)
	for i := range records {
		counts[records[i].Name]++
	}
	for _, name := range domain.FeatureNames(records) {
		view, _ := selector.Select(records, name)
		if len(view.Points) != counts[name] {
			p.errorf("feature %s: series has %d points, want %d", name, len(view.Points), counts[name])
		}
	}
	return p
}
