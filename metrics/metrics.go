package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VouchersIssued counts minted vouchers by tier.
	VouchersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_issued_total",
			Help: "Number of signed reward vouchers issued",
		},
		[]string{"tier"},
	)

	// ClaimDuration tracks the latency of claim phases.
	ClaimDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reward_claim_duration_seconds",
			Help:    "Duration of reward claim requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"phase", "status"},
	)
)

// RecordClaimDuration records one claim request.
func RecordClaimDuration(phase, status string, seconds float64) {
	ClaimDuration.WithLabelValues(phase, status).Observe(seconds)
}
