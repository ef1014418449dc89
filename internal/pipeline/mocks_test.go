package pipeline_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/features"
)

// --- mocks ---

// scriptedScorer returns probabilities in order, cycling when the batch is
// longer than the script.
type scriptedScorer struct {
	probs   []float64
	err     error
	batches [][]features.Tensor
}

func (s *scriptedScorer) Score(_ context.Context, batch []features.Tensor) ([]float64, error) {
	s.batches = append(s.batches, batch)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(batch))
	for i := range batch {
		out[i] = s.probs[i%len(s.probs)]
	}
	return out, nil
}

type recordingSink struct {
	mu     sync.Mutex
	alerts []domain.AlertEvent
	err    error
}

func (s *recordingSink) PublishAlerts(_ context.Context, alerts []domain.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alerts...)
	return s.err
}

type fakeCatalog struct {
	events  []domain.EarthquakeEvent
	err     error
	queries []domain.CatalogQuery
}

func (c *fakeCatalog) Earthquakes(_ context.Context, q domain.CatalogQuery) ([]domain.EarthquakeEvent, error) {
	c.queries = append(c.queries, q)
	return c.events, c.err
}

// tensorJSON builds a nested JSON array of zeros with the given shape.
func tensorJSON(dims ...int) json.RawMessage {
	var build func(d []int) string
	build = func(d []int) string {
		if len(d) == 0 {
			return "0"
		}
		parts := make([]string, d[0])
		for i := range parts {
			parts[i] = build(d[1:])
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return json.RawMessage(build(dims))
}

func ptr[T any](v T) *T { return &v }
