// Command mkfeatures writes prediction request bodies built with the same
// encoder the earthquake assessor uses, for exercising /predict and
// /batch-predict by hand or from load tests.
//
// Usage:
//
//	go run ./cmd/mkfeatures -magnitude 8.1 -depth 25 -seed 7 -out predict.json
//	go run ./cmd/mkfeatures -magnitude 6.0 -count 16 -out batch.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/couchcryptid/tsunami-risk-service/internal/features"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	magnitude := flag.Float64("magnitude", 7.5, "earthquake magnitude")
	depth := flag.Float64("depth", 10, "hypocenter depth in km")
	seed := flag.Uint64("seed", 1, "noise seed; the same seed reproduces the same tensor")
	count := flag.Int("count", 0, "write a batch-predict body with this many samples instead of a single predict body")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if *magnitude < 0 || *magnitude > 10 {
		return fmt.Errorf("magnitude %.1f out of range [0, 10]", *magnitude)
	}
	if *count < 0 {
		return fmt.Errorf("count must not be negative")
	}

	enc := features.NewEncoder(rand.New(rand.NewPCG(*seed, *seed)))

	var body any
	if *count == 0 {
		body = map[string]any{"data": enc.Encode(*magnitude, *depth, 0, 0)}
	} else {
		samples := make([]features.Tensor, *count)
		for i := range samples {
			samples[i] = enc.Encode(*magnitude, *depth, 0, 0)
		}
		body = map[string]any{"samples": samples}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	if *out == "" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	if err := os.WriteFile(*out, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %s (magnitude %.1f, depth %.0f km)", *out, *magnitude, *depth)
	return nil
}
