package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the portal client and the mock
// portal. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	LoginsTotal         *prometheus.CounterVec
	UsersCreated        prometheus.Counter
	LookupsTotal        *prometheus.CounterVec
	StaleLookupsDropped prometheus.Counter
	LookupCacheHits     prometheus.Counter
	LookupCircuitOpen   prometheus.Gauge
	SubmitsTotal        *prometheus.CounterVec

	ServerRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simohu_http_requests_total",
			Help: "Outgoing API requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simohu_http_request_duration_seconds",
			Help:    "Outgoing API request latency by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simohu_logins_total",
			Help: "Login attempts by account type and outcome",
		}, []string{"account_type", "outcome"}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "simohu_users_created_total",
			Help: "Total number of portal users created",
		}),
		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simohu_cep_lookups_total",
			Help: "Postal-code lookups by outcome (found, not_found, error)",
		}, []string{"outcome"}),
		StaleLookupsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "simohu_cep_lookups_stale_total",
			Help: "Lookup responses discarded because a newer lookup was dispatched",
		}),
		LookupCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "simohu_cep_cache_hits_total",
			Help: "Postal-code lookups answered from the cache",
		}),
		LookupCircuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "simohu_cep_circuit_open",
			Help: "1 while the postal-code lookup circuit breaker is open",
		}),
		SubmitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simohu_registration_submits_total",
			Help: "Registration submits by outcome",
		}, []string{"outcome"}),
		ServerRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simohu_mockportal_request_duration_seconds",
			Help:    "Mock portal request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveRequest records one outgoing request.
func (m *Metrics) ObserveRequest(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) IncrementLogins(accountType, outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(accountType, outcome).Inc()
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementLookups(outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementStaleLookups() {
	if m == nil {
		return
	}
	m.StaleLookupsDropped.Inc()
}

func (m *Metrics) IncrementLookupCacheHits() {
	if m == nil {
		return
	}
	m.LookupCacheHits.Inc()
}

func (m *Metrics) SetLookupCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.LookupCircuitOpen.Set(1)
		return
	}
	m.LookupCircuitOpen.Set(0)
}

func (m *Metrics) IncrementSubmits(outcome string) {
	if m == nil {
		return
	}
	m.SubmitsTotal.WithLabelValues(outcome).Inc()
}

// ObserveServerRequest records one request served by the mock portal.
func (m *Metrics) ObserveServerRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.ServerRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}
