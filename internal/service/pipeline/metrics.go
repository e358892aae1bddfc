package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs",
		},
		[]string{"trigger", "status"},
	)

	postsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "pipeline_posts_generated_total",
			Help:      "Total drafts persisted by the pipeline",
		},
		[]string{"source"},
	)

	candidateFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "pipeline_candidate_failures_total",
			Help:      "Total candidates dropped during generation",
		},
		[]string{"stage"},
	)

	roundsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "museos",
			Name:      "pipeline_rounds",
			Help:      "Fetch rounds used per pipeline run",
			Buckets:   prometheus.LinearBuckets(1, 1, 5),
		},
	)
)
