package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cronChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "cron_checks_total",
			Help:      "Total hourly checks run",
		},
	)

	cronTriggeredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "cron_triggered_total",
			Help:      "Total scheduled pipeline runs started",
		},
	)

	cronFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "cron_failures_total",
			Help:      "Total scheduled runs that failed",
		},
	)
)
