package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the lineup service. It uses
// its own registry so tests can create as many instances as they like.
type Metrics struct {
	registry      *prometheus.Registry
	requestsTotal *prometheus.CounterVec
	errorsTotal   prometheus.Counter
	ticksTotal    prometheus.Counter
	festivalLive  prometheus.Gauge
	daysLoaded    prometheus.Gauge
	setsLoaded    prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "festcal_requests_total",
		Help: "Total number of HTTP requests received, by status class",
	}, []string{"code"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "festcal_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "festcal_clock_ticks_total",
		Help: "Number of clock ticks that re-evaluated the festival status",
	})
	festivalLive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festcal_festival_live",
		Help: "1 while a festival day is live, 0 otherwise",
	})
	daysLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festcal_days_loaded",
		Help: "Number of festival days in the loaded lineup",
	})
	setsLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festcal_sets_loaded",
		Help: "Number of sets in the loaded lineup",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		ticksTotal,
		festivalLive,
		daysLoaded,
		setsLoaded,
	)

	return &Metrics{
		registry:      registry,
		requestsTotal: requestsTotal,
		errorsTotal:   errorsTotal,
		ticksTotal:    ticksTotal,
		festivalLive:  festivalLive,
		daysLoaded:    daysLoaded,
		setsLoaded:    setsLoaded,
	}
}

// ObserveRequest counts one request with the given status code.
func (m *Metrics) ObserveRequest(status int) {
	m.requestsTotal.WithLabelValues(statusClass(status)).Inc()
	if status >= 400 {
		m.errorsTotal.Inc()
	}
}

// IncTicks counts one clock tick.
func (m *Metrics) IncTicks() {
	m.ticksTotal.Inc()
}

// SetLive records whether a festival day is currently live.
func (m *Metrics) SetLive(live bool) {
	if live {
		m.festivalLive.Set(1)
		return
	}
	m.festivalLive.Set(0)
}

// SetLineup records the size of the loaded lineup.
func (m *Metrics) SetLineup(days, sets int) {
	m.daysLoaded.Set(float64(days))
	m.setsLoaded.Set(float64(sets))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
