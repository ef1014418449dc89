// Package ndbc fetches realtime buoy observations from the NOAA National
// Data Buoy Center.
package ndbc

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/textfeed"
)

// Client implements telemetry.TextFetcher for NDBC buoy ids.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an NDBC client. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchText returns the realtime2 standard meteorological file of a buoy.
func (c *Client) FetchText(ctx context.Context, buoyID string) (string, error) {
	return textfeed.Get(ctx, c.httpClient, c.baseURL+"/data/realtime2/"+url.PathEscape(buoyID)+".txt")
}
