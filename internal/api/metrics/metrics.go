// Package metrics defines the custom Prometheus metrics of the toolbox admin
// application. It is the single source of truth for metric names, labels and
// help strings. HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "toolbox"

// Result label values.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultInvalid   = "invalid"
	ResultConflict  = "conflict"
	ResultForbidden = "forbidden"
	ResultNotFound  = "not_found"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid" (bad credentials) or "failure" (store error)
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ── Admin metrics ─────────────────────────────────────────────────────────────

// AdminOperationsTotal counts mutating admin operations.
// Labels:
//   - entity: "user", "group", "role" or "tool"
//   - operation: "add", "edit", "delete" or "assign"
//   - result: one of the Result* values
var AdminOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_operations_total",
		Help:      "Total number of admin create/update/delete operations, by entity, operation and result.",
	},
	[]string{"entity", "operation", "result"},
)
