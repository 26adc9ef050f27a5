// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadastro_active_sessions",
			Help: "Number of mounted forms currently held in memory.",
		})

	SessionEvictTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadastro_session_evict_total",
			Help: "Cumulative number of form sessions evicted, by reason.",
		}, []string{"reason"})

	FormEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadastro_form_events_total",
			Help: "Cumulative number of form events dispatched, by event type.",
		}, []string{"type"})

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadastro_submissions_total",
			Help: "Cumulative number of submit attempts, by outcome.",
		}, []string{"outcome"})

	CallbackErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadastro_callback_errors_total",
			Help: "Cumulative number of failed persistence callbacks, by operation.",
		}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		SessionEvictTotal,
		FormEventsTotal,
		SubmissionsTotal,
		CallbackErrorsTotal,
	)
}
