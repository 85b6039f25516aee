// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package cascade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/technoborsch/easyview/internal/apperr"
)

// cascadeOperations counts cascade operations.
// Labels:
//   - operation: e.g. "create_project", "add_building", "delete_identity"
//   - outcome: "success", "conflict", "fatal", "error"
var cascadeOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cascade_operations_total",
		Help: "Total number of ownership cascade operations",
	},
	[]string{"operation", "outcome"},
)

// RecordCascade records one cascade operation outcome.
func RecordCascade(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case apperr.IsKind(err, apperr.KindConflict):
		outcome = "conflict"
	case apperr.IsKind(err, apperr.KindFatal):
		outcome = "fatal"
	default:
		outcome = "error"
	}
	cascadeOperations.WithLabelValues(operation, outcome).Inc()
}
