package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsRegistered counts tickets durably stored, labeled by payment platform.
	TicketsRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raffle",
			Name:      "tickets_registered_total",
			Help:      "The total number of tickets persisted",
		},
		[]string{"platform"},
	)

	// PurchasesExpired counts purchases aborted by the payment countdown.
	PurchasesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "raffle",
			Name:      "purchases_expired_total",
			Help:      "The total number of purchases aborted by the payment window",
		},
	)

	// OccupiedNumbers tracks the size of the cached occupancy set.
	OccupiedNumbers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "raffle",
			Name:      "occupied_numbers",
			Help:      "The number of raffle numbers currently claimed",
		},
	)

	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)
