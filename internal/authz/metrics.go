// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/technoborsch/easyview/internal/apperr"
)

// authzDecisions counts authorization decisions.
// Labels:
//   - entity: "project", "building", "viewpoint", "viewpoint_create",
//     "building_create", "identity"
//   - action: "read", "update", "delete"
//   - decision: "allow", "not_found", "forbidden"
var authzDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Total number of authorization decisions",
	},
	[]string{"entity", "action", "decision"},
)

// RecordDecision records the outcome of one authorization check.
func RecordDecision(entity string, action Action, err error) {
	decision := "allow"
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		decision = "not_found"
	case apperr.KindForbidden:
		decision = "forbidden"
	}
	authzDecisions.WithLabelValues(entity, action.String(), decision).Inc()
}
