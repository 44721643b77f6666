package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconciliation outcomes, labelled matched / unreconciled / duplicate /
// failed. Matching by amount alone is known to be lossy, so the unreconciled
// counter is the one worth alerting on.
var reconcileOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "homehub_reconciliation_outcomes_total",
		Help: "Payment reconciliation outcomes by result.",
	},
	[]string{"outcome"},
)

const (
	outcomeMatched      = "matched"
	outcomeUnreconciled = "unreconciled"
	outcomeDuplicate    = "duplicate"
	outcomeFailed       = "failed"
)
