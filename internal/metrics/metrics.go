package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Activity metrics
var (
	// QueriesTotal counts logged lookups by translation direction
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabot_queries_total",
			Help: "Total word lookups by translation direction",
		},
		[]string{"direction"},
	)

	// UsersRegisteredTotal counts first-time users
	UsersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vocabot_users_registered_total",
			Help: "Total users registered",
		},
	)
)

// Broadcast metrics
var (
	// QuizMessagesTotal counts quiz prompts by status (sent/failed)
	QuizMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabot_quiz_messages_total",
			Help: "Quiz prompts by delivery status",
		},
		[]string{"status"},
	)

	// BroadcastDuration tracks how long one dispatch over all users takes
	BroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vocabot_broadcast_duration_seconds",
			Help:    "Duration of a quiz dispatch in seconds",
			Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		},
	)
)

// Transport and upstream metrics
var (
	// TranslationRequestsTotal counts upstream API calls by service and status
	TranslationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabot_upstream_requests_total",
			Help: "Upstream translation/dictionary requests by service and status",
		},
		[]string{"service", "status"},
	)

	// CircuitBreakerState tracks breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vocabot_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)

	// UpdatesTotal counts Telegram updates by source (webhook/polling) and status
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabot_updates_total",
			Help: "Telegram updates received by source and status",
		},
		[]string{"source", "status"},
	)
)
