// Package metrics holds the prometheus collectors for the booking service.
// Collectors live on their own registry so tests can build isolated instances.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "space_booking"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	admissions   *prometheus.CounterVec
	admitLatency *prometheus.HistogramVec
	quotes       *prometheus.CounterVec
	expired      prometheus.Counter
	cacheEvents  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		admissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "admissions_total", Help: "Reservation admission decisions."},
			[]string{"decision", "reason"},
		),
		admitLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "admission_duration_seconds",
				Help:    "Time spent deciding an admission, lock wait included.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"decision"},
		),
		quotes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "quotes_total", Help: "Quote requests by outcome."},
			[]string{"outcome"},
		),
		expired: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "pending_expired_total", Help: "Pending reservations cancelled by the sweeper."},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
			[]string{"cache", "event"}, // event: hit|miss|set|del|error
		),
	}
	m.registry.MustRegister(
		m.httpRequests, m.httpLatency,
		m.admissions, m.admitLatency,
		m.quotes, m.expired, m.cacheEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, dur time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func (m *Metrics) ObserveAdmission(decision, reason string, elapsed time.Duration) {
	if reason == "" {
		reason = "none"
	}
	m.admissions.WithLabelValues(decision, reason).Inc()
	m.admitLatency.WithLabelValues(decision).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuote(outcome string) {
	m.quotes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveExpired(n int) {
	if n > 0 {
		m.expired.Add(float64(n))
	}
}

func (m *Metrics) ObserveCache(cache, event string) {
	m.cacheEvents.WithLabelValues(cache, event).Inc()
}
