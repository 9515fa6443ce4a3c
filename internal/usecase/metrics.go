package usecase

import (
	"estate-api/internal/verification"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	proofOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_proof_outcomes_total",
			Help: "Verification and reset proofs evaluated, by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)
)

func recordProof(flow string, outcome verification.Outcome) {
	proofOutcomes.WithLabelValues(flow, outcome.String()).Inc()
}
