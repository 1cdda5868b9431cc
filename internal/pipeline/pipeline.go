package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Publisher exports assessed objects to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, assessed []domain.AssessedNeo) error
}

// Refresher periodically fetches the rolling feed window, scores every
// object and hands the assessments to an optional Publisher. Fetching through
// a cached repository keeps the default API window warm.
type Refresher struct {
	repo       domain.NeoRepository
	publisher  Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	windowDays int
	interval   time.Duration
	ready      atomic.Bool
}

// New creates a Refresher. Pass a nil publisher to disable export.
func New(repo domain.NeoRepository, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, windowDays int, interval time.Duration) *Refresher {
	return &Refresher{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		windowDays: windowDays,
		interval:   interval,
	}
}

// CheckReadiness returns nil once a refresh cycle has completed, or an error
// describing why the service is not yet ready.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("feed has not been refreshed yet")
	}
	return nil
}

// Ready reports whether at least one refresh has succeeded.
func (r *Refresher) Ready() bool {
	return r.ready.Load()
}

// Run refreshes immediately and then on every interval tick until the context
// is cancelled. Failed cycles are retried with exponential backoff.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "window_days", r.windowDays, "interval", r.interval)
	r.metrics.RefreshRunning.Set(1)
	defer r.metrics.RefreshRunning.Set(0)

	ticker := domain.Clock().NewTicker(r.interval)
	defer ticker.Stop()

	backoff := initialBackoff
	for {
		if err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("refresher stopping", "reason", ctx.Err())
				return nil
			}
			r.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			if !retry.SleepWithContext(ctx, backoff) {
				r.logger.Info("refresher stopping", "reason", ctx.Err())
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// Refresh runs one fetch-assess-publish cycle over the default window.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()

	from, to := domain.DefaultWindow(r.windowDays)
	feed, err := r.repo.Feed(ctx, from, to)
	if err != nil {
		r.metrics.RefreshErrors.Inc()
		return fmt.Errorf("fetch feed %s..%s: %w", from.Format(domain.DateLayout), to.Format(domain.DateLayout), err)
	}

	assessed := domain.AssessFeed(feed)
	counts := r.record(assessed)

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, assessed); err != nil {
			r.metrics.PublishErrors.Inc()
			r.metrics.RefreshErrors.Inc()
			return fmt.Errorf("publish assessments: %w", err)
		}
		r.metrics.MessagesPublished.Add(float64(len(assessed)))
	}

	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)

	r.logger.Info("feed refreshed",
		"start_date", feed.StartDate,
		"end_date", feed.EndDate,
		"neos", len(assessed),
		"critical", counts[domain.RiskCritical],
		"high", counts[domain.RiskHigh],
	)
	return nil
}
