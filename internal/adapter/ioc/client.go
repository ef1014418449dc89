// Package ioc fetches sea-level exports from the IOC Sea Level Monitoring
// Facility.
package ioc

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/textfeed"
	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

// window is how far back each export reaches. Ten minutes of one-minute
// samples is the most the parser keeps; the margin covers reporting gaps.
const window = 2 * time.Hour

// Client implements telemetry.TextFetcher for IOC station codes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
}

// NewClient creates an IOC client. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration, clock clockwork.Clock) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		clock:      domain.ClockOrReal(clock),
	}
}

// FetchText returns the CSV export of the station identified by code.
func (c *Client) FetchText(ctx context.Context, code string) (string, error) {
	now := c.clock.Now().UTC()
	params := url.Values{
		"query":     {"data"},
		"code":      {code},
		"timestart": {now.Add(-window).Format("2006-01-02T15:04:05")},
		"timestop":  {now.Format("2006-01-02T15:04:05")},
		"format":    {"csv"},
	}
	return textfeed.Get(ctx, c.httpClient, c.baseURL+"/service.php?"+params.Encode())
}
