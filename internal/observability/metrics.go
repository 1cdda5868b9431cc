package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "neo_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// NeoWs upstream metrics.
	NeoWsRequests   *prometheus.CounterVec   // labels: endpoint={feed,lookup}, outcome={success,error,not_found}
	NeoWsDuration   *prometheus.HistogramVec // labels: endpoint={feed,lookup}
	RecordsRejected prometheus.Counter
	CacheLookups    *prometheus.CounterVec // labels: kind={feed,lookup}, result={hit,miss}

	// Scoring metrics.
	Assessments *prometheus.CounterVec // labels: level={low,medium,high,critical}
	NeosTracked *prometheus.GaugeVec   // labels: level; current refresh window

	// Refresher metrics.
	RefreshRunning  prometheus.Gauge
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram

	// Publisher metrics.
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.NeoWsRequests,
		m.NeoWsDuration,
		m.RecordsRejected,
		m.CacheLookups,
		m.Assessments,
		m.NeosTracked,
		m.RefreshRunning,
		m.RefreshErrors,
		m.RefreshDuration,
		m.MessagesPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		NeoWsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neows_requests_total",
			Help:      "NeoWs API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		NeoWsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "neows_request_duration_seconds",
			Help:      "NeoWs API request duration in seconds, including rate limiter wait.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Feed records dropped because they failed validation.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Repository cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Risk assessments computed by the refresher, by level.",
		}, []string{"level"}),
		NeosTracked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neos_tracked",
			Help:      "Objects in the current refresh window, by risk level.",
		}, []string{"level"}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_running",
			Help:      "1 when the feed refresher is active, 0 when shut down.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Feed refresh cycles that failed.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-assess-publish cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Assessment messages written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed assessment publish attempts.",
		}),
	}
}
