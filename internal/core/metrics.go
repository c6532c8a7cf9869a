package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	recognitions       *prometheus.CounterVec   // by version and confidence band
	recognitionSeconds prometheus.Histogram
	conversions        *prometheus.CounterVec   // by source, target and outcome
	conversionSeconds  *prometheus.HistogramVec // by method
	batches            *prometheus.CounterVec   // by kind and outcome
	activeBatches      prometheus.Gauge
	lookupUpdates      *prometheus.CounterVec // by version
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	buckets := []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05}

	m := &Metrics{
		recognitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "euring",
			Subsystem: "recognition",
			Name:      "total",
			Help:      "Records recognized, by winning version and confidence band",
		}, []string{"version", "band"}),

		recognitionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "euring",
			Subsystem: "recognition",
			Name:      "duration_seconds",
			Help:      "Time spent recognizing one record",
			Buckets:   buckets,
		}),

		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "euring",
			Subsystem: "conversion",
			Name:      "total",
			Help:      "Records converted, by source, target and outcome",
		}, []string{"source", "target", "outcome"}),

		conversionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "euring",
			Subsystem: "conversion",
			Name:      "duration_seconds",
			Help:      "Time spent converting one record",
			Buckets:   buckets,
		}, []string{"method"}),

		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "euring",
			Subsystem: "batch",
			Name:      "total",
			Help:      "Batches handled, by kind and outcome",
		}, []string{"kind", "outcome"}),

		activeBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "euring",
			Subsystem: "batch",
			Name:      "active",
			Help:      "Batches currently holding a limiter slot",
		}),

		lookupUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "euring",
			Subsystem: "lookup",
			Name:      "updates_total",
			Help:      "Lookup table updates, by version",
		}, []string{"version"}),
	}

	reg.MustRegister(
		m.recognitions,
		m.recognitionSeconds,
		m.conversions,
		m.conversionSeconds,
		m.batches,
		m.activeBatches,
		m.lookupUpdates,
	)
	return m
}

func confidenceBand(c float64) string {
	switch {
	case c >= 0.9:
		return "high"
	case c >= DefaultMinConfidence:
		return "medium"
	default:
		return "low"
	}
}

func (m *Metrics) observeRecognition(version string, confidence float64, d time.Duration) {
	if m == nil {
		return
	}
	if version == "" {
		version = "none"
	}
	m.recognitions.WithLabelValues(version, confidenceBand(confidence)).Inc()
	m.recognitionSeconds.Observe(d.Seconds())
}

func (m *Metrics) observeConversion(source, target string, method ConversionMethod, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	if source == "" {
		source = "unknown"
	}
	m.conversions.WithLabelValues(source, target, outcome).Inc()
	m.conversionSeconds.WithLabelValues(string(method)).Observe(d.Seconds())
}

func (m *Metrics) observeBatch(kind, outcome string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) batchStarted() {
	if m != nil {
		m.activeBatches.Inc()
	}
}

func (m *Metrics) batchFinished() {
	if m != nil {
		m.activeBatches.Dec()
	}
}

func (m *Metrics) observeLookupUpdate(version string) {
	if m != nil {
		m.lookupUpdates.WithLabelValues(version).Inc()
	}
}
