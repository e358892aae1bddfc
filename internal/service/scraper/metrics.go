package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scraperRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "scraper_requests_total",
			Help:      "Total scraper actor runs",
		},
		[]string{"mode", "status"},
	)

	scraperPostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museos",
			Name:      "scraper_posts_total",
			Help:      "Total candidate posts returned by the scraper",
		},
		[]string{"mode"},
	)

	scraperDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "museos",
			Name:      "scraper_duration_seconds",
			Help:      "Duration of scraper actor runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 9),
		},
		[]string{"mode"},
	)
)
