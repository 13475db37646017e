// Package metrics exposes Prometheus counters for the download endpoint
// and the remote media cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Remote fetch results
const (
	FetchCached   = "cached"
	FetchOK       = "fetched"
	FetchNotFound = "not_found"
	FetchTooLarge = "too_large"
	FetchFailed   = "failed"
)

// PrometheusMetrics records dispatch decisions and remote fetch outcomes.
type PrometheusMetrics struct {
	dispatchTotal    *prometheus.CounterVec
	remoteFetchTotal *prometheus.CounterVec
	remoteFetchBytes prometheus.Histogram
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registry.
func New(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simple_media_download_dispatch_total",
				Help: "Download requests by routing decision",
			},
			[]string{"decision"},
		),
		remoteFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simple_media_remote_fetch_total",
				Help: "Remote media lookups by result",
			},
			[]string{"result"},
		),
		remoteFetchBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "simple_media_remote_fetch_bytes",
				Help:    "Size of media fetched from remote servers",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
	}

	reg.MustRegister(m.dispatchTotal, m.remoteFetchTotal, m.remoteFetchBytes)
	return m
}

// RecordDispatch counts one routing decision.
func (m *PrometheusMetrics) RecordDispatch(decision string) {
	m.dispatchTotal.WithLabelValues(decision).Inc()
}

// RecordRemoteFetch counts one remote lookup and, for fresh downloads,
// observes its size.
func (m *PrometheusMetrics) RecordRemoteFetch(result string, size int64) {
	m.remoteFetchTotal.WithLabelValues(result).Inc()
	if result == FetchOK {
		m.remoteFetchBytes.Observe(float64(size))
	}
}
