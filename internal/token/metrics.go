// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package token

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tokenOperations counts token lifecycle operations.
	// Labels:
	//   - operation: "issue_access", "issue_refresh", "revoke", "rotate"
	//   - outcome: "success", "error", "store_error", "verify_failed", "blacklisted"
	tokenOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_operations_total",
			Help: "Total number of token lifecycle operations",
		},
		[]string{"operation", "outcome"},
	)

	// tokenVerifications counts verification attempts by outcome.
	// Labels:
	//   - kind: "access", "refresh"
	//   - outcome: "success", "expired", "invalid", "blacklisted",
	//     "wrong_kind", "store_error"
	tokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_verifications_total",
			Help: "Total number of token verification attempts",
		},
		[]string{"kind", "outcome"},
	)

	// tokenVerificationDuration measures verification latency, including
	// the revocation lookup in the credential store.
	tokenVerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_verification_duration_seconds",
			Help:    "Duration of token verification in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"kind"},
	)
)

// RecordTokenOperation records a token lifecycle operation outcome.
func RecordTokenOperation(operation, outcome string) {
	tokenOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordTokenVerification records a verification attempt and its latency.
func RecordTokenVerification(kind Kind, outcome string, duration time.Duration) {
	tokenVerifications.WithLabelValues(kindLabel(kind), outcome).Inc()
	tokenVerificationDuration.WithLabelValues(kindLabel(kind)).Observe(duration.Seconds())
}

func kindLabel(kind Kind) string {
	if kind == KindRefresh {
		return "refresh"
	}
	return "access"
}
