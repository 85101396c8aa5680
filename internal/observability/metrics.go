package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fightbook"

// Metrics holds the Prometheus collectors for the arena and its HTTP API.
// All collectors live on a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	fightsTotal     *prometheus.CounterVec
	fightExchanges  prometheus.Histogram
	fightRounds     prometheus.Histogram
	registrations   prometheus.Counter
	rateLimited     *prometheus.CounterVec
	rosterSize      prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	telnetSessions  prometheus.Gauge
	storeOperations *prometheus.CounterVec
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fightsTotal: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fights_total",
			Help:      "Completed fights by finish method",
		}, []string{"method"}),
		fightExchanges: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fight_exchanges",
			Help:      "Exchanges resolved per fight",
			Buckets:   []float64{1, 3, 6, 10, 15, 20, 25, 30},
		}),
		fightRounds: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fight_finish_round",
			Help:      "Round in which fights ended",
			Buckets:   []float64{1, 2, 3},
		}),
		registrations: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Fighters registered",
		}),
		rateLimited: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limit gate",
		}, []string{"gate"}),
		rosterSize: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roster_size",
			Help:      "Fighters on the roster at the last listing",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint, method, and status code",
		}, []string{"endpoint", "method", "status_code"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"endpoint", "method", "status_code"}),
		telnetSessions: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "telnet_sessions",
			Help:      "Open terminal arena sessions",
		}),
		storeOperations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Store operations that failed, by operation",
		}, []string{"operation"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFight records one completed fight.
func (m *Metrics) RecordFight(method string, round, exchanges int) {
	m.fightsTotal.WithLabelValues(method).Inc()
	m.fightRounds.Observe(float64(round))
	m.fightExchanges.Observe(float64(exchanges))
}

// RecordRegistration counts one registered fighter.
func (m *Metrics) RecordRegistration() { m.registrations.Inc() }

// RecordRateLimited counts a request rejected by gate ("fight" or "register").
func (m *Metrics) RecordRateLimited(gate string) { m.rateLimited.WithLabelValues(gate).Inc() }

// SetRosterSize records the roster size.
func (m *Metrics) SetRosterSize(n int) { m.rosterSize.Set(float64(n)) }

// RecordStoreError counts a failed store operation.
func (m *Metrics) RecordStoreError(op string) { m.storeOperations.WithLabelValues(op).Inc() }

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(endpoint, method, status string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	m.httpDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// SessionOpened and SessionClosed track open terminal sessions.
func (m *Metrics) SessionOpened() { m.telnetSessions.Inc() }

// SessionClosed decrements the open terminal session gauge.
func (m *Metrics) SessionClosed() { m.telnetSessions.Dec() }
