package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kavak_chat_turns_total",
			Help: "Total number of chat turns handled, by intent",
		},
		[]string{"intent"},
	)

	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kavak_chat_turn_duration_seconds",
			Help:    "Duration of chat turn handling in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"intent"},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kavak_catalog_items",
			Help: "Number of items in the active catalog snapshot",
		},
	)

	StateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kavak_state_conflicts_total",
			Help: "Optimistic-lock conflicts while updating conversation state",
		},
	)

	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kavak_collaborator_failures_total",
			Help: "Failures of external collaborators, converted to fallback replies",
		},
		[]string{"collaborator"},
	)

	LeadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kavak_leads_captured_total",
			Help: "Total number of contact leads captured",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kavak_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
)
