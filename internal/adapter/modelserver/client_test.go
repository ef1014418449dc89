package modelserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tsunami-risk-service/internal/features"
)

const availableStatus = `{"model_version_status":[{"version":"1","state":"AVAILABLE","status":{"error_code":"OK"}}]}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeServing mimics the two TF Serving endpoints the client uses.
func fakeServing(t *testing.T, status string, predict http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models/tsunami", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(status))
	})
	if predict != nil {
		mux.HandleFunc("POST /v1/models/tsunami:predict", predict)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func load(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := Load(context.Background(), Options{URL: srv.URL, Name: "tsunami", Timeout: 5 * time.Second}, discardLogger())
	require.NoError(t, err)
	return c
}

func TestLoad_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		opts func(url string) Options
	}{
		{"no url", func(string) Options { return Options{Name: "tsunami"} }},
		{"unknown model", func(u string) Options { return Options{URL: u, Name: "other", Timeout: time.Second} }},
		{"not ready", func(u string) Options { return Options{URL: u, Name: "tsunami", Timeout: time.Second} }},
	}
	srv := fakeServing(t, `{"model_version_status":[{"version":"1","state":"LOADING"}]}`, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(context.Background(), tt.opts(srv.URL), discardLogger())
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestScore_Success(t *testing.T) {
	srv := fakeServing(t, availableStatus, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Instances [][][]float64 `json:"instances"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Instances, 2)
		assert.Len(t, req.Instances[0], features.TimeSteps)
		assert.Len(t, req.Instances[0][0], features.Features)
		_, _ = w.Write([]byte(`{"predictions": [[0.91], [0.02]]}`))
	})

	probs, err := load(t, srv).Score(context.Background(), make([]features.Tensor, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.91, 0.02}, probs)
}

func TestScore_FlatPredictions(t *testing.T) {
	srv := fakeServing(t, availableStatus, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": [0.5]}`))
	})

	probs, err := load(t, srv).Score(context.Background(), make([]features.Tensor, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, probs)
}

func TestScore_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusBadRequest, `{"error": "Input to reshape is a tensor with 10 values"}`, "status 400"},
		{"out of range", http.StatusOK, `{"predictions": [[1.2]]}`, "out of range"},
		{"count mismatch", http.StatusOK, `{"predictions": [[0.1], [0.2]]}`, "2 predictions for 1"},
		{"garbage", http.StatusOK, `{"predictions": "nope"}`, "decode predictions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeServing(t, availableStatus, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := load(t, srv).Score(context.Background(), make([]features.Tensor, 1))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model_type": "CNN-LSTM focal", "test_auc": 0.97}`), 0o600))

	m, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "CNN-LSTM focal", m.ModelType())
	assert.InDelta(t, 0.97, m["test_auc"], 1e-9)

	_, err = LoadMetadata(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	var empty Metadata
	assert.Nil(t, empty.ModelType())
}
