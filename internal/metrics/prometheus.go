package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService manages Prometheus metrics for the ticker API
type MetricsService struct {
	// API request metrics
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	inFlight           prometheus.Gauge

	// Quote metrics
	quotesServed *prometheus.CounterVec

	// Fault injection metrics
	faultErrors   *prometheus.CounterVec
	faultDelays   *prometheus.CounterVec
	faultDelaySec *prometheus.HistogramVec

	requestCount  uint64     // Internal counter for requests
	faultCount    uint64     // Internal counter for injected errors
	countersMutex sync.Mutex // Mutex to protect internal counters
}

// Stats is a point-in-time view of the internal counters
type Stats struct {
	Requests       uint64  `json:"requests"`
	InjectedErrors uint64  `json:"injected_errors"`
	ErrorRate      float64 `json:"error_rate"`
}

// NewMetricsService creates a new metrics service registered on reg
func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	factory := promauto.With(reg)

	m := &MetricsService{
		// API metrics
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticker_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"endpoint", "status"},
		),
		apiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticker_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // From 1ms to ~8s
			},
			[]string{"endpoint"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticker_api_requests_in_flight",
				Help: "Number of API requests currently being served",
			},
		),

		// Quote metrics
		quotesServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticker_quotes_served_total",
				Help: "Total number of synthesized quotes",
			},
			[]string{"endpoint", "known"},
		),

		// Fault injection metrics
		faultErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticker_fault_errors_total",
				Help: "Total number of injected server errors",
			},
			[]string{"endpoint"},
		),
		faultDelays: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticker_fault_delays_total",
				Help: "Total number of injected delays by bucket",
			},
			[]string{"endpoint", "bucket"},
		),
		faultDelaySec: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticker_fault_delay_seconds",
				Help:    "Injected delay in seconds",
				Buckets: []float64{.1, .25, .5, .75, 1, 5},
			},
			[]string{"endpoint"},
		),
	}

	return m
}

// RecordAPIRequest records an API request
func (m *MetricsService) RecordAPIRequest(endpoint string, status int) {
	m.countersMutex.Lock()
	m.requestCount++
	m.countersMutex.Unlock()
	m.apiRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// ObserveAPIRequestDuration records the duration of an API request
func (m *MetricsService) ObserveAPIRequestDuration(endpoint string, duration time.Duration) {
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncInFlight marks the start of a request
func (m *MetricsService) IncInFlight() {
	m.inFlight.Inc()
}

// DecInFlight marks the end of a request
func (m *MetricsService) DecInFlight() {
	m.inFlight.Dec()
}

// RecordQuote records a synthesized quote and whether its key had a base price
func (m *MetricsService) RecordQuote(endpoint string, known bool) {
	m.quotesServed.WithLabelValues(endpoint, strconv.FormatBool(known)).Inc()
}

// RecordInjectedError records an injected server error
func (m *MetricsService) RecordInjectedError(endpoint string) {
	m.countersMutex.Lock()
	m.faultCount++
	m.countersMutex.Unlock()
	m.faultErrors.WithLabelValues(endpoint).Inc()
}

// RecordInjectedDelay records an injected delay
// bucket: "short", "long", "random"
func (m *MetricsService) RecordInjectedDelay(endpoint, bucket string, delay time.Duration) {
	m.faultDelays.WithLabelValues(endpoint, bucket).Inc()
	m.faultDelaySec.WithLabelValues(endpoint).Observe(delay.Seconds())
}

// GetStats returns the request and injected error totals
func (m *MetricsService) GetStats() Stats {
	m.countersMutex.Lock()
	defer m.countersMutex.Unlock()

	s := Stats{
		Requests:       m.requestCount,
		InjectedErrors: m.faultCount,
	}
	if s.Requests > 0 {
		s.ErrorRate = float64(s.InjectedErrors) / float64(s.Requests)
	}
	return s
}
