// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace auth API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "ok", "invalid_credentials", or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// SignUpsTotal counts completed registrations.
// Label:
//   - role: the sign-up role choice ("client" or "freelancer")
var SignUpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ups_total",
		Help:      "Total number of accounts created, by chosen role.",
	},
	[]string{"role"},
)

// ProvisioningErrorsTotal counts post-sign-up writes that failed and were
// handed to the retry queue.
// Label:
//   - write: "profile", "role", or "freelancer"
var ProvisioningErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provisioning_errors_total",
		Help:      "Total number of failed post-sign-up provisioning writes.",
	},
	[]string{"write"},
)

// ProvisioningRetriesTotal counts retry outcomes from the provisioner queue.
// Labels:
//   - write:  "profile", "role", or "freelancer"
//   - result: "ok" or "failed" (failed means attempts were exhausted)
var ProvisioningRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provisioning_retries_total",
		Help:      "Total number of provisioning retry attempts, by outcome.",
	},
	[]string{"write", "result"},
)

// PasswordResetsTotal counts password-reset flow stages.
// Label:
//   - stage: "requested", "completed", or "invalid_token"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password-reset flow events, by stage.",
	},
	[]string{"stage"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// ProfileFetchErrorsTotal counts profile/role fetches that failed. Fetch
// errors never clear already-loaded state, so this counter is the only
// visibility into them.
var ProfileFetchErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_fetch_errors_total",
		Help:      "Total number of failed profile/role fetches.",
	},
)

// GuardDecisionsTotal counts role-guard evaluations on protected routes.
// Labels:
//   - required: the role the route requires ("client", "freelancer", "admin")
//   - decision: "allow" or "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of role-guard decisions on protected routes.",
	},
	[]string{"required", "decision"},
)

// SessionFetchDuration measures how long resolving a session plus its
// profile and roles takes on guarded requests.
var SessionFetchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_fetch_duration_seconds",
		Help:      "Duration of session + profile + role resolution on guarded requests.",
		Buckets:   prometheus.DefBuckets,
	},
)
