package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retrogames/domain/catalog"
)

// Collector holds the Prometheus metrics of the local server
type Collector struct {
	registry *prometheus.Registry

	CacheLookups       *prometheus.CounterVec
	TranslationSeconds *prometheus.HistogramVec
	AuthDecisions      *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry, so several
// instances can coexist in tests
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translation_cache_lookups_total",
				Help:      "Translated store lookups by language and outcome",
			},
			[]string{"lang", "status"},
		),
		TranslationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "translation_fill_duration_seconds",
				Help:      "Duration of translation cache fills",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"lang"},
		),
		AuthDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_decisions_total",
				Help:      "Authorization decisions by effect and reason",
			},
			[]string{"effect", "reason"},
		),
	}

	registry.MustRegister(c.CacheLookups, c.TranslationSeconds, c.AuthDecisions)
	return c
}

// CacheLookup implements ports.Metrics
func (c *Collector) CacheLookup(_ context.Context, lang string, status catalog.CacheStatus) {
	c.CacheLookups.WithLabelValues(lang, string(status)).Inc()
}

// TranslationLatency implements ports.Metrics
func (c *Collector) TranslationLatency(_ context.Context, lang string, d time.Duration) {
	c.TranslationSeconds.WithLabelValues(lang).Observe(d.Seconds())
}

// AuthDecision implements ports.Metrics
func (c *Collector) AuthDecision(_ context.Context, effect, reason string) {
	if reason == "" {
		reason = "verified"
	}
	c.AuthDecisions.WithLabelValues(effect, reason).Inc()
}

// Registry returns the registry backing the collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
