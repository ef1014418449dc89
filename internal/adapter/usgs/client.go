// Package usgs queries the USGS FDSN event web service for earthquakes.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/observability"
)

// Client implements pipeline.Catalog using the FDSN event query endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a USGS catalog client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		metrics:    metrics,
		logger:     logger,
	}
}

// Earthquakes returns the events matching q, newest first.
func (c *Client) Earthquakes(ctx context.Context, q domain.CatalogQuery) ([]domain.EarthquakeEvent, error) {
	events, err := c.query(ctx, q)
	if err != nil {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.CatalogRequests.WithLabelValues("success").Inc()
	return events, nil
}

func (c *Client) query(ctx context.Context, q domain.CatalogQuery) ([]domain.EarthquakeEvent, error) {
	params := url.Values{
		"format":       {"geojson"},
		"orderby":      {"time"},
		"starttime":    {q.Start.UTC().Format(time.RFC3339)},
		"endtime":      {q.End.UTC().Format(time.RFC3339)},
		"minlatitude":  {formatCoord(q.Box.MinLatitude)},
		"maxlatitude":  {formatCoord(q.Box.MaxLatitude)},
		"minlongitude": {formatCoord(q.Box.MinLongitude)},
		"maxlongitude": {formatCoord(q.Box.MaxLongitude)},
		"minmagnitude": {strconv.FormatFloat(q.MinMagnitude, 'f', -1, 64)},
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fdsnws/event/1/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("earthquake catalog request: %w", err)
	}
	defer resp.Body.Close()

	// FDSN answers 204 when nothing matches.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	events := make([]domain.EarthquakeEvent, 0, len(fc.Features))
	for _, f := range fc.Features {
		ev, ok := f.toEvent()
		if !ok {
			c.logger.Debug("skipping catalog feature without coordinates", "id", f.ID)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// GeoJSON response types.

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"` // epoch milliseconds
	URL   string   `json:"url"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth_km]
}

func (f feature) toEvent() (domain.EarthquakeEvent, bool) {
	if len(f.Geometry.Coordinates) < 3 {
		return domain.EarthquakeEvent{}, false
	}
	ev := domain.EarthquakeEvent{
		ID:        f.ID,
		Longitude: f.Geometry.Coordinates[0],
		Latitude:  f.Geometry.Coordinates[1],
		DepthKm:   f.Geometry.Coordinates[2],
		Time:      time.UnixMilli(f.Properties.Time).UTC(),
		Place:     f.Properties.Place,
		URL:       f.Properties.URL,
	}
	if f.Properties.Mag != nil {
		ev.Magnitude = *f.Properties.Mag
	}
	return ev, true
}
