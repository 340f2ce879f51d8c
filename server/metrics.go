package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uyouii/isotherm-augmentor/common"
)

const metricsNamespace = "isotherm"

type Metrics struct {
	registry *prometheus.Registry

	computations    *prometheus.CounterVec
	computeDuration prometheus.Histogram
	fittingFailures *prometheus.CounterVec
	exports         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "computations_total",
			Help:      "Compute requests by outcome.",
		}, []string{"outcome"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "computation_duration_seconds",
			Help:      "Time spent handling compute requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		fittingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fitting_failures_total",
			Help:      "Fitting failures by method.",
		}, []string{"method"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exports_total",
			Help:      "Exported tables by format.",
		}, []string{"format"}),
	}
	m.registry.MustRegister(m.computations, m.computeDuration, m.fittingFailures, m.exports)
	return m
}

func (m *Metrics) observeCompute(elapsed time.Duration, err error) {
	m.computeDuration.Observe(elapsed.Seconds())
	if err == nil {
		m.computations.WithLabelValues("success").Inc()
		return
	}
	m.computations.WithLabelValues("error").Inc()

	var fitErr *common.FittingError
	if errors.As(err, &fitErr) {
		m.fittingFailures.WithLabelValues(fitErr.Method).Inc()
	}
}

func (m *Metrics) observeExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
