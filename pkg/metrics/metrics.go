// Package metrics exposes Prometheus counters for lookups, Gemini calls,
// persistence and the HTTP front end.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every vibetime metric.
type Collector struct {
	suggestLookups *prometheus.CounterVec
	fortunes       *prometheus.CounterVec
	geminiLatency  *prometheus.HistogramVec
	geminiErrors   *prometheus.CounterVec
	stateWrites    *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	wsClients      prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		suggestLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibetime_suggest_lookups_total",
			Help: "City suggestion lookups by answering source.",
		}, []string{"source"}),
		fortunes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibetime_fortunes_total",
			Help: "Fortunes served, generated or fallback.",
		}, []string{"result"}),
		geminiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vibetime_gemini_latency_seconds",
			Help:    "Gemini call latency in seconds, including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		geminiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibetime_gemini_errors_total",
			Help: "Failed Gemini calls after retries.",
		}, []string{"op"}),
		stateWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibetime_state_writes_total",
			Help: "Session state writes by key and result.",
		}, []string{"key", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibetime_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vibetime_ws_clients",
			Help: "Connected WebSocket clients.",
		}),
	}

	reg.MustRegister(
		c.suggestLookups,
		c.fortunes,
		c.geminiLatency,
		c.geminiErrors,
		c.stateWrites,
		c.httpStatus,
		c.wsClients,
	)
	return c
}

// RecordSuggestion counts one answered lookup.
func (c *Collector) RecordSuggestion(source string) {
	c.suggestLookups.WithLabelValues(source).Inc()
}

// RecordFortune counts one served fortune.
func (c *Collector) RecordFortune(fallback bool) {
	result := "generated"
	if fallback {
		result = "fallback"
	}
	c.fortunes.WithLabelValues(result).Inc()
}

// ObserveGemini records one Gemini call.
func (c *Collector) ObserveGemini(op string, took time.Duration, err error) {
	c.geminiLatency.WithLabelValues(op).Observe(took.Seconds())
	if err != nil {
		c.geminiErrors.WithLabelValues(op).Inc()
	}
}

// RecordStateWrite counts one persisted key.
func (c *Collector) RecordStateWrite(key string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.stateWrites.WithLabelValues(key, result).Inc()
}

// RecordHTTPStatus counts one HTTP response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// WSConnected increments the WebSocket client gauge.
func (c *Collector) WSConnected() { c.wsClients.Inc() }

// WSDisconnected decrements the WebSocket client gauge.
func (c *Collector) WSDisconnected() { c.wsClients.Dec() }

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
