package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "museos",
		Name:      "generator_fallbacks_total",
		Help:      "Total deterministic fallbacks taken instead of a model result",
	},
	[]string{"stage"},
)
