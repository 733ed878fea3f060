// Package metrics exposes Prometheus metrics for gallery refreshes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace prefixes every mediamix metric.
	Namespace = "mediamix"

	// Fetch outcomes.
	OutcomeSuccess     = "success"
	OutcomeFetchError  = "fetch_error"
	OutcomeConfigError = "config_error"
	OutcomeParseError  = "parse_error"
)

// Metrics holds the refresh metrics.
type Metrics struct {
	FetchesTotal         *prometheus.CounterVec
	FetchDurationSeconds *prometheus.HistogramVec
	GalleryItems         *prometheus.GaugeVec
	ItemsAddedTotal      prometheus.Counter
	RenderFailuresTotal  prometheus.Counter
	GenerateRequests     *prometheus.CounterVec
}

// New creates and registers the metrics on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "poller",
				Name:      "fetches_total",
				Help:      "Total number of source fetches by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		FetchDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "poller",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of source fetches",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		GalleryItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "gallery",
				Name:      "items",
				Help:      "Number of items currently in the gallery by type",
			},
			[]string{"type"},
		),
		ItemsAddedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "gallery",
			Name:      "items_added_total",
			Help:      "Total number of items added across observed refreshes",
		}),
		RenderFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "gallery",
			Name:      "render_failures_total",
			Help:      "Total number of previews reported as failed",
		}),
		GenerateRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "generate",
				Name:      "requests_total",
				Help:      "Total number of generation requests by content type and result",
			},
			[]string{"content_type", "result"},
		),
	}
}
