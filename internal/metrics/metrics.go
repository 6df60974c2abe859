package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvocationsTotal tracks invocations handed out per method
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paramretry_invocations_total",
			Help: "Total number of invocations run",
		},
		[]string{"method"},
	)

	// RetriesTotal tracks retries per method and the failure kind that caused them
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paramretry_retries_total",
			Help: "Total number of retried attempts",
		},
		[]string{"method", "kind"},
	)

	// TuplesTotal tracks committed tuples by final status
	TuplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paramretry_tuples_total",
			Help: "Total number of committed tuples",
		},
		[]string{"method", "status"},
	)

	// AttemptsPerTuple tracks how many attempts a tuple needed
	AttemptsPerTuple = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paramretry_attempts_per_tuple",
			Help:    "Attempts made per committed tuple",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		},
		[]string{"method"},
	)

	// AttemptDuration tracks the wall time of a single attempt
	AttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paramretry_attempt_duration_seconds",
			Help:    "Attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
