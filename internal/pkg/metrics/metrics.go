package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_sync"

// Request outcomes used as label values.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Metrics groups the collectors of the sync layer. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RemoteRequests    *prometheus.CounterVec
	CancelledRequests *prometheus.CounterVec
	PriceCacheHits    prometheus.Counter
	PriceSources      *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	DiscardedResults  prometheus.Counter
}

// New creates the collectors and registers them when reg is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Remote API calls by api and outcome.",
		}, []string{"api", "outcome"}),
		CancelledRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_cancelled_total",
			Help:      "Remote API calls aborted by supersession, detach or timeout.",
		}, []string{"api"}),
		PriceCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_cache_hits_total",
			Help:      "Snapshots served from a valid price cache entry.",
		}),
		PriceSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_source_total",
			Help:      "Snapshots by the tier that produced their price.",
		}, []string{"source"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full balance and transaction refresh.",
			Buckets:   prometheus.DefBuckets,
		}),
		DiscardedResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_results_discarded_total",
			Help:      "Refresh results dropped because a newer refresh or key took over.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RemoteRequests,
			m.CancelledRequests,
			m.PriceCacheHits,
			m.PriceSources,
			m.RefreshDuration,
			m.DiscardedResults,
		)
	}
	return m
}

func (m *Metrics) ObserveRequest(api, outcome string) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(api, outcome).Inc()
	if outcome == OutcomeCancelled {
		m.CancelledRequests.WithLabelValues(api).Inc()
	}
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.PriceCacheHits.Inc()
}

func (m *Metrics) ObservePriceSource(source string) {
	if m == nil {
		return
	}
	m.PriceSources.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveRefresh(d time.Duration) {
	if m == nil {
		return
	}
	m.RefreshDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveDiscard() {
	if m == nil {
		return
	}
	m.DiscardedResults.Inc()
}
