package neows

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/config"
	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
	"golang.org/x/time/rate"
)

const (
	endpointFeed   = "feed"
	endpointLookup = "lookup"

	// maxBodyBytes bounds a single response; a full seven-day feed is well under this.
	maxBodyBytes = 16 << 20
)

// Client implements domain.NeoRepository using the NASA NeoWs REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs client. Outbound requests share one token-bucket
// limiter so the API key's hourly quota is not exhausted in bursts.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.NeoWsAPIKey,
		baseURL: cfg.NeoWsBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.NeoWsTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.NeoWsRateLimit), cfg.NeoWsRateBurst),
		metrics: metrics,
		logger:  logger,
	}
}

// Feed returns every object with a close approach in [start, end].
func (c *Client) Feed(ctx context.Context, start, end time.Time) (domain.Feed, error) {
	if err := domain.ValidateWindow(start, end); err != nil {
		return domain.Feed{}, err
	}

	params := url.Values{
		"start_date": {start.Format(domain.DateLayout)},
		"end_date":   {end.Format(domain.DateLayout)},
		"api_key":    {c.apiKey},
	}
	body, err := c.doRequest(ctx, c.baseURL+"/feed?"+params.Encode(), endpointFeed)
	if err != nil {
		return domain.Feed{}, err
	}

	feed, rejected, err := DecodeFeed(bytes.NewReader(body))
	if err != nil {
		return domain.Feed{}, err
	}
	for _, r := range rejected {
		c.logger.Warn("skipping invalid neo record",
			"date", r.Date,
			"index", r.Index,
			"error", r.Err,
		)
	}
	c.metrics.RecordsRejected.Add(float64(len(rejected)))

	feed.StartDate = start.Format(domain.DateLayout)
	feed.EndDate = end.Format(domain.DateLayout)
	return feed, nil
}

// Lookup returns a single object by ID. Unknown IDs yield domain.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, id string) (domain.NeoRecord, error) {
	if id == "" {
		return domain.NeoRecord{}, fmt.Errorf("lookup: %w", domain.ErrNotFound)
	}

	params := url.Values{"api_key": {c.apiKey}}
	u := fmt.Sprintf("%s/neo/%s?%s", c.baseURL, url.PathEscape(id), params.Encode())
	body, err := c.doRequest(ctx, u, endpointLookup)
	if err != nil {
		return domain.NeoRecord{}, err
	}
	return DecodeNeo(bytes.NewReader(body))
}

func (c *Client) doRequest(ctx context.Context, fullURL, endpoint string) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.NeoWsDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	body, err := c.fetch(ctx, fullURL, endpoint)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.metrics.NeoWsRequests.WithLabelValues(endpoint, "not_found").Inc()
	case err != nil:
		c.metrics.NeoWsRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Debug("neows request failed", "endpoint", endpoint, "error", err)
	default:
		c.metrics.NeoWsRequests.WithLabelValues(endpoint, "success").Inc()
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, fullURL, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit wait: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the query string, which carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", endpoint, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("neows API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return body, nil
}
