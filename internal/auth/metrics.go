// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authenticationAttempts counts credential resolutions by scheme.
	// Labels:
	//   - scheme: "Bearer", "Refresh"
	//   - outcome: "success", "malformed", "expired", "blacklisted",
	//     "wrong_kind", "invalid", "store_error", "directory_error",
	//     "unknown_identity", "inactive"
	authenticationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"scheme", "outcome"},
	)

	// loginLockouts counts login attempts rejected by the lockout.
	loginLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_login_lockouts_total",
			Help: "Total number of login attempts rejected by account lockout",
		},
	)
)

// RecordAuthentication records one credential resolution outcome.
func RecordAuthentication(scheme, outcome string) {
	authenticationAttempts.WithLabelValues(scheme, outcome).Inc()
}

// RecordLockout records a login attempt rejected by the lockout.
func RecordLockout() {
	loginLockouts.Inc()
}
