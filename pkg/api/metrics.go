package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Region scan metrics
	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram

	// Slot decode outcome metrics, counted per assembled grid
	decodeOutcomesTotal *prometheus.CounterVec

	// Save lifecycle metrics
	uploadsTotal *prometheus.CounterVec
	exportsTotal *prometheus.CounterVec
	savesTotal   prometheus.Gauge

	// WebSocket metrics
	wsClients prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with reg.
// Tests hand in a private registry so parallel server instances never fight
// over collector names.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		// HTTP request metrics
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pokho_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pokho_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		// Region scan metrics
		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_scans_total",
				Help: "Total number of region scans",
			},
			[]string{"status"},
		),

		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pokho_scan_duration_seconds",
				Help:    "Region scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Slot decode outcomes
		decodeOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_decode_outcomes_total",
				Help: "Slot decode outcomes observed while assembling box grids",
			},
			[]string{"outcome"},
		),

		// Save lifecycle metrics
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_uploads_total",
				Help: "Total number of save uploads",
			},
			[]string{"status"},
		),

		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_exports_total",
				Help: "Total number of slot exports",
			},
			[]string{"status"},
		),

		savesTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pokho_saves_total",
				Help: "Number of saves currently stored",
			},
		),

		// WebSocket metrics
		wsClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pokho_ws_clients",
				Help: "Number of connected WebSocket clients",
			},
		),

		// Authentication metrics
		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		// Health check metrics
		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokho_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordScan records a region scan
func (m *Metrics) RecordScan(success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.scansTotal.WithLabelValues(status).Inc()
	m.scanDuration.Observe(duration.Seconds())
}

// RecordDecodeOutcomes records the slot classes seen in one assembled grid
func (m *Metrics) RecordDecodeOutcomes(valid, garbage, empty int) {
	m.decodeOutcomesTotal.WithLabelValues("valid").Add(float64(valid))
	m.decodeOutcomesTotal.WithLabelValues("garbage").Add(float64(garbage))
	m.decodeOutcomesTotal.WithLabelValues("empty").Add(float64(empty))
}

// RecordUpload records a save upload
func (m *Metrics) RecordUpload(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
}

// RecordExport records a slot export
func (m *Metrics) RecordExport(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.exportsTotal.WithLabelValues(status).Inc()
}

// UpdateSaveStats updates the stored-save gauge
func (m *Metrics) UpdateSaveStats(count int) {
	m.savesTotal.Set(float64(count))
}

// SetWSClients updates the connected WebSocket client gauge
func (m *Metrics) SetWSClients(count int) {
	m.wsClients.Set(float64(count))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Record request in flight
		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Call the original handler
		handler(rw, r)

		// Record metrics
		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		wrapped := next(h)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			wrapped.ServeHTTP(rw, r)

			// Only attempts that presented a key count as auth requests
			if r.Header.Get("X-API-Key") != "" {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
