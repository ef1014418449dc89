// Package textfeed downloads plain-text telemetry feeds and applies the
// availability rules shared by every text provider.
package textfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

// MinBodyBytes is the shortest body accepted as a real feed. Anything shorter
// is an error stub or an empty export.
const MinBodyBytes = 50

// maxBodyBytes bounds how much of a feed is read.
const maxBodyBytes = 4 << 20

// Get fetches url and returns its body. A transport error, a non-200 status
// or a body shorter than MinBodyBytes wraps domain.ErrProviderUnavailable.
func Get(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, text/csv")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrProviderUnavailable, err)
	}
	if len(body) < MinBodyBytes {
		return "", fmt.Errorf("%w: body too short (%d bytes)", domain.ErrProviderUnavailable, len(body))
	}
	return string(body), nil
}
