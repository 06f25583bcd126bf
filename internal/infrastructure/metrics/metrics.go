package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn-API Metrics
var (
	// Turn counters
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roborail",
			Subsystem: "turn_api",
			Name:      "turns_total",
			Help:      "Total number of processed turns",
		},
		[]string{"model", "status"},
	)

	// Turn duration histogram
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roborail",
			Subsystem: "turn_api",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)

	// Tool call counters
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roborail",
			Subsystem: "turn_api",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations",
		},
		[]string{"tool_name", "status"},
	)

	// Tool duration histogram
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roborail",
			Subsystem: "turn_api",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool_name"},
	)

	// Stream event counter
	StreamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roborail",
			Subsystem: "turn_api",
			Name:      "stream_events_total",
			Help:      "Total events emitted on turn streams",
		},
		[]string{"event"},
	)
)

// RecordTurn records a completed turn.
func RecordTurn(model, status string, durationSec float64) {
	TurnsTotal.WithLabelValues(model, status).Inc()
	TurnDuration.WithLabelValues(model).Observe(durationSec)
}

// RecordToolCall records a tool invocation.
func RecordToolCall(toolName, status string, durationSec float64) {
	ToolCallsTotal.WithLabelValues(toolName, status).Inc()
	ToolDuration.WithLabelValues(toolName).Observe(durationSec)
}

// RecordStreamEvent counts one emitted stream event.
func RecordStreamEvent(event string) {
	StreamEventsTotal.WithLabelValues(event).Inc()
}
