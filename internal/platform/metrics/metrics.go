// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exposes Prometheus counters for credential events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event names.
const (
	EventRegister       = "register"
	EventLogin          = "login"
	EventResetRequest   = "reset_request"
	EventResetComplete  = "reset_complete"
	EventPasswordChange = "password_change"
	EventSessionCheck   = "session_check"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Auth counts credential events by outcome.
//
// A nil *Auth is valid and records nothing, so components can run without metrics.
type Auth struct {
	events   *prometheus.CounterVec
	registry *prometheus.Registry
}

// NewAuth creates a registry holding the auth counters plus the Go runtime
// and process collectors.
func NewAuth() *Auth {
	registry := prometheus.NewRegistry()

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passport_auth_events_total",
			Help: "Total number of credential events by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	registry.MustRegister(
		events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Auth{events: events, registry: registry}
}

// Record increments the counter for event and outcome.
func (auth *Auth) Record(event, outcome string) {
	if auth == nil {
		return
	}
	auth.events.WithLabelValues(event, outcome).Inc()
}

// Counter exposes one series, for tests and diagnostics.
func (auth *Auth) Counter(event, outcome string) prometheus.Counter {
	return auth.events.WithLabelValues(event, outcome)
}

// Handler serves the registry in the Prometheus exposition format.
func (auth *Auth) Handler() http.Handler {
	return promhttp.HandlerFor(auth.registry, promhttp.HandlerOpts{})
}
