// Package metrics holds the prometheus collectors for the bridge.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tablebridge"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	turnsTotal       *prometheus.CounterVec
	turnDuration     *prometheus.HistogramVec
	turnsActive      prometheus.Gauge
	eventsPublished  *prometheus.CounterVec
	uiParseFailures  prometheus.Counter
	uiInvalid        prometheus.Counter
	toolCallsTotal   *prometheus.CounterVec
	providerRetries  *prometheus.CounterVec
	rpcRequestsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of turns by terminal state",
			},
			[]string{"state"},
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Duration of turns from request to terminal state",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"state"},
		),
		turnsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "turns_active",
				Help:      "Number of turns currently streaming",
			},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total events published to sinks",
			},
			[]string{"kind"},
		),
		uiParseFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "a2ui_parse_failures_total",
				Help:      "UI payloads that failed to parse and were sent as text",
			},
		),
		uiInvalid: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "a2ui_validation_failures_total",
				Help:      "Generated UI payloads rejected by schema validation",
			},
		),
		toolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total tool calls by tool and status",
			},
			[]string{"tool", "status"},
		),
		providerRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_retries_total",
				Help:      "Retries of provider requests after transient errors",
			},
			[]string{"provider"},
		),
		rpcRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "JSON-RPC requests by method and result",
			},
			[]string{"method", "result"},
		),
	}

	reg.MustRegister(
		m.turnsTotal,
		m.turnDuration,
		m.turnsActive,
		m.eventsPublished,
		m.uiParseFailures,
		m.uiInvalid,
		m.toolCallsTotal,
		m.providerRetries,
		m.rpcRequestsTotal,
	)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// TurnStarted marks a turn as in flight.
func (m *Metrics) TurnStarted() {
	if m == nil {
		return
	}
	m.turnsActive.Inc()
}

// TurnFinished records a turn's terminal state and duration.
func (m *Metrics) TurnFinished(state string, d time.Duration) {
	if m == nil {
		return
	}
	m.turnsActive.Dec()
	m.turnsTotal.WithLabelValues(state).Inc()
	m.turnDuration.WithLabelValues(state).Observe(d.Seconds())
}

// EventPublished counts an event of the given kind.
func (m *Metrics) EventPublished(kind string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(kind).Inc()
}

// UIParseFailed counts a UI payload degraded to text.
func (m *Metrics) UIParseFailed() {
	if m == nil {
		return
	}
	m.uiParseFailures.Inc()
}

// UIInvalid counts a schema validation failure.
func (m *Metrics) UIInvalid() {
	if m == nil {
		return
	}
	m.uiInvalid.Inc()
}

// ToolCall counts a tool execution.
func (m *Metrics) ToolCall(tool string, isError bool) {
	if m == nil {
		return
	}
	status := "success"
	if isError {
		status = "error"
	}
	m.toolCallsTotal.WithLabelValues(tool, status).Inc()
}

// ProviderRetry counts a retried provider request.
func (m *Metrics) ProviderRetry(provider string) {
	if m == nil {
		return
	}
	m.providerRetries.WithLabelValues(provider).Inc()
}

// RPCRequest counts a JSON-RPC request.
func (m *Metrics) RPCRequest(method, result string) {
	if m == nil {
		return
	}
	m.rpcRequestsTotal.WithLabelValues(method, result).Inc()
}
