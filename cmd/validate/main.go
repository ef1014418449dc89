// Command validate checks deployment inputs before they reach the service: a
// station registry file and, optionally, prediction request bodies. It
// reports one PASS/FAIL line per phase and exits non-zero on any failure.
//
// Usage:
//
//	go run ./cmd/validate -stations deploy/stations.yaml
//	go run ./cmd/validate -stations "" -predict predict.json -batch batch.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/tsunami-risk-service/internal/features"
	"github.com/couchcryptid/tsunami-risk-service/internal/registry"
)

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
	stationsPath := flag.String("stations", "", "station registry YAML (empty checks the embedded registry)")
	predictPath := flag.String("predict", "", "optional /predict request body to check")
	batchPath := flag.String("batch", "", "optional /batch-predict request body to check")
	flag.Parse()

	os.Exit(run(*stationsPath, *predictPath, *batchPath))
}

func run(stationsPath, predictPath, batchPath string) int {
	fmt.Println("=== Tsunami Service Input Validation ===")
	fmt.Println()

	phases := []*phase{validateRegistry(stationsPath)}
	if predictPath != "" {
		phases = append(phases, validateBody("Predict body", predictPath, "data", features.ParseInput))
	}
	if batchPath != "" {
		phases = append(phases, validateBody("Batch body", batchPath, "samples", features.ParseBatch))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

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

// validateRegistry loads the registry and checks every station lies inside
// its region's catalog bounding box, so earthquake queries cover the coast
// the telemetry describes.
func validateRegistry(path string) *phase {
	p := &phase{name: "Station registry"}

	reg, err := registry.Load(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	for _, key := range reg.Regions() {
		region, err := reg.Region(key)
		if err != nil {
			p.errorf("%s: %v", key, err)
			continue
		}
		box := region.BBox
		if box.MinLatitude >= box.MaxLatitude || box.MinLongitude >= box.MaxLongitude {
			p.errorf("%s: empty bounding box %+v", key, box)
			continue
		}
		for _, st := range region.Stations {
			lon := st.Longitude
			// Boxes crossing the antimeridian use longitudes above 180.
			if lon < box.MinLongitude {
				lon += 360
			}
			if st.Latitude < box.MinLatitude || st.Latitude > box.MaxLatitude ||
				lon < box.MinLongitude || lon > box.MaxLongitude {
				p.errorf("%s/%s: (%.3f, %.3f) outside bounding box", key, st.ID, st.Latitude, st.Longitude)
			}
		}
		fmt.Printf("  %-14s %d stations, buoy %q\n", key, len(region.Stations), region.SecondaryBuoy)
	}
	return p
}

func validateBody(name, path, field string, parse func(json.RawMessage) ([]features.Tensor, error)) *phase {
	p := &phase{name: name}

	b, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		p.errorf("%s: invalid JSON: %v", path, err)
		return p
	}
	raw, ok := body[field]
	if !ok {
		p.errorf("%s: missing %q field", path, field)
		return p
	}
	batch, err := parse(raw)
	if err != nil {
		p.errorf("%s: %v", path, err)
		return p
	}
	fmt.Printf("  %-14s %d samples of (%d, %d)\n", name, len(batch), features.TimeSteps, features.Features)
	return p
}
