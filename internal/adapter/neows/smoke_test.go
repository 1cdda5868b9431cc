//go:build neows

package neows

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// These tests hit the real NeoWs API. NEOWS_API_KEY defaults to DEMO_KEY,
// which is heavily rate limited.
// Run with: go test -tags=neows ./internal/adapter/neows/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("NEOWS_API_KEY")
	if key == "" {
		key = "DEMO_KEY"
	}
	return &Client{
		apiKey:     key,
		baseURL:    "https://api.nasa.gov/neo/rest/v1",
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Feed(t *testing.T) {
	c := smokeClient(t)

	end := time.Now().UTC()
	feed, err := c.Feed(context.Background(), end.AddDate(0, 0, -1), end)
	require.NoError(t, err)

	assert.Positive(t, feed.ElementCount)
	require.NotEmpty(t, feed.Neos)
	for _, rec := range feed.Neos {
		a := rec.Assess()
		require.NotNil(t, a, "feed records carry the approach for their date")
		assert.Equal(t, domain.LevelForScore(a.Score), a.Level)
	}
}

func TestSmoke_Lookup(t *testing.T) {
	c := smokeClient(t)

	// 433 Eros
	rec, err := c.Lookup(context.Background(), "2000433")
	require.NoError(t, err)

	assert.Contains(t, rec.Name, "Eros")
	assert.NotEmpty(t, rec.CloseApproaches)
	assert.Greater(t, rec.EstimatedDiameter.MaxKm, 10.0)
}

func TestSmoke_LookupUnknown(t *testing.T) {
	c := smokeClient(t)

	_, err := c.Lookup(context.Background(), "1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
