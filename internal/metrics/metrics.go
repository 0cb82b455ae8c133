package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voicebridge_sessions_active",
		Help: "Currently connected realtime voice sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebridge_sessions_total",
		Help: "Total realtime voice sessions started",
	})

	SessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebridge_session_duration_seconds",
		Help:    "Session lifetime from peer connected to teardown",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
	})

	HandshakeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebridge_handshake_duration_seconds",
		Help:    "Connect latency from token request to peer connected",
		Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 10},
	})

	ResponseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebridge_response_latency_seconds",
		Help:    "Latency from a sent user message to the first assistant payload",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
	})

	PhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebridge_phase_transitions_total",
		Help: "Connection phase transitions",
	}, []string{"from", "to"})

	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebridge_tool_calls_total",
		Help: "Tool call dispatches by outcome",
	}, []string{"tool", "outcome"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebridge_errors_total",
		Help: "Classified session errors",
	}, []string{"code"})

	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebridge_events_received_total",
		Help: "Inbound realtime events by type",
	}, []string{"type"})
)
