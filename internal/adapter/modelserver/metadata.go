package modelserver

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata is the free-form description of the served model, read from a
// JSON file produced at training time.
type Metadata map[string]any

// LoadMetadata reads a metadata file.
func LoadMetadata(path string) (Metadata, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model metadata: %w", err)
	}
	return m, nil
}

// ModelType returns the "model_type" entry, or nil when absent.
func (m Metadata) ModelType() any {
	if m == nil {
		return nil
	}
	return m["model_type"]
}
