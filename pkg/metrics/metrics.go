// Package metrics exposes Prometheus collectors for the validation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records pipeline activity.
// Each Collector owns its registry so several servers can run in one process (tests).
type Collector struct {
	registry *prometheus.Registry
	uploads  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates a Collector with its own registry, including Go runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_uploads_total",
				Help: "Processed uploads by declared file type and verdict.",
			},
			[]string{"file_type", "verdict"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_rule_outcomes_total",
				Help: "Rule outcomes by rule and result.",
			},
			[]string{"rule", "passed"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_processing_seconds",
				Help:    "Time spent validating and recording one upload.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	c.registry.MustRegister(
		c.uploads,
		c.outcomes,
		c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveOutcome counts a single rule outcome.
func (c *Collector) ObserveOutcome(o domain.Outcome) {
	c.outcomes.WithLabelValues(string(o.Rule), strconv.FormatBool(o.Passed)).Inc()
}

// ObserveReport counts a finished upload and its processing time.
func (c *Collector) ObserveReport(r domain.Report, elapsed time.Duration) {
	verdict := "rejected"
	if r.Accepted {
		verdict = "accepted"
	}
	c.uploads.WithLabelValues(fileTypeLabel(r.FileType), verdict).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// ObserveError counts an upload that could not be processed.
func (c *Collector) ObserveError(fileType domain.FileType, elapsed time.Duration) {
	c.uploads.WithLabelValues(fileTypeLabel(fileType), "error").Inc()
	c.duration.Observe(elapsed.Seconds())
}

// fileTypeLabel bounds the label set; the declared type comes from the client.
func fileTypeLabel(t domain.FileType) string {
	if t.Supported() {
		return string(t)
	}
	return "other"
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
