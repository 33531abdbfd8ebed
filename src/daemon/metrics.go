// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package daemon

import (
	"net/http"
	"time"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported by the daemon. All of them are
// registered on a private registry so several daemons can coexist in one
// process.
type Metrics struct {
	Registry *prometheus.Registry

	// Calls counts backend calls by method and outcome.
	Calls *kitprometheus.Counter
	// Latency observes backend call duration in seconds by method.
	Latency *kitprometheus.Histogram

	cycles *prometheus.CounterVec
	expiry *prometheus.GaugeVec
}

// MakeMetrics creates and registers the daemon collectors.
func MakeMetrics(namespace, subsystem string) *Metrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backend_calls_total",
		Help:      "Number of signing backend calls.",
	}, []string{"method", "outcome"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backend_call_duration_seconds",
		Help:      "Duration of signing backend calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "cycles_total",
		Help:      "Number of validation cycles by result.",
	}, []string{"result"})

	expiry := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "certificate_expiry_seconds",
		Help:      "Seconds until the certificate expires, as of the last check.",
	}, []string{"name"})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		calls, latency, cycles, expiry,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: reg,
		Calls:    kitprometheus.NewCounter(calls),
		Latency:  kitprometheus.NewHistogram(latency),
		cycles:   cycles,
		expiry:   expiry,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) cycle(result string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result).Inc()
}

func (m *Metrics) expires(name string, notAfter, now time.Time) {
	if m == nil || notAfter.IsZero() {
		return
	}
	m.expiry.WithLabelValues(name).Set(notAfter.Sub(now).Seconds())
}
