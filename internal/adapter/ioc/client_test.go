package ioc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

const csvBody = "time,slevel\n2024-03-01 10:00:00,120\n2024-03-01 10:01:00,121\n"

func TestClient_FetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/service.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "data", q.Get("query"))
		assert.Equal(t, "hilo", q.Get("code"))
		assert.Equal(t, "csv", q.Get("format"))
		assert.Equal(t, "2024-03-01T08:00:00", q.Get("timestart"))
		assert.Equal(t, "2024-03-01T10:00:00", q.Get("timestop"))
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	c := NewClient(srv.URL+"/", 5*time.Second, clock)

	body, err := c.FetchText(context.Background(), "hilo")
	require.NoError(t, err)
	assert.Equal(t, csvBody, body)
}

func TestClient_FetchText_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	_, err := c.FetchText(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
