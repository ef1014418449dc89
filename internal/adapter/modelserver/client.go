// Package modelserver scores feature tensors against a model hosted behind
// the TensorFlow Serving REST API.
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-risk-service/internal/features"
)

// Options configures the model server connection.
type Options struct {
	URL     string
	Name    string
	Timeout time.Duration
}

// Client implements pipeline.Scorer. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	modelURL   string
	logger     *slog.Logger
}

// Load verifies that the model is served and ready, and returns a client for
// it. Callers keep running without a classifier when Load fails.
func Load(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("model server URL not configured")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		modelURL:   strings.TrimRight(opts.URL, "/") + "/v1/models/" + url.PathEscape(opts.Name),
		logger:     logger,
	}
	if err := c.checkAvailable(ctx); err != nil {
		return nil, fmt.Errorf("load model %q: %w", opts.Name, err)
	}
	logger.Info("classifier loaded", "model", opts.Name, "url", opts.URL)
	return c, nil
}

type statusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

func (c *Client) checkAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("model server error: status %d: %s", resp.StatusCode, body)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decode model status: %w", err)
	}
	for _, v := range status.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return nil
		}
	}
	return errors.New("no AVAILABLE model version")
}

type predictRequest struct {
	Instances []features.Tensor `json:"instances"`
}

type predictResponse struct {
	Predictions json.RawMessage `json:"predictions"`
	Error       string          `json:"error"`
}

// Score returns one probability per tensor.
func (c *Client) Score(ctx context.Context, batch []features.Tensor) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: batch})
	if err != nil {
		return nil, fmt.Errorf("encode instances: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL+":predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode predictions (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server error: status %d: %s", resp.StatusCode, pr.Error)
	}

	probs, err := flatten(pr.Predictions)
	if err != nil {
		return nil, err
	}
	if len(probs) != len(batch) {
		return nil, fmt.Errorf("model returned %d predictions for %d instances", len(probs), len(batch))
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("prediction %d out of range: %v", i, p)
		}
	}
	return probs, nil
}

// flatten accepts [p, ...] or [[p], ...], the two shapes a single-output
// sigmoid model produces.
func flatten(raw json.RawMessage) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	out := make([]float64, 0, len(nested))
	for _, row := range nested {
		out = append(out, row...)
	}
	return out, nil
}
