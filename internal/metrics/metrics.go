// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinkMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affilinks_link_mutations_total",
		Help: "Link create/update/delete attempts by outcome.",
	}, []string{"op", "result"})

	ListFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affilinks_list_fallbacks_total",
		Help: "List calls answered with the built-in seed links.",
	}, []string{"reason"})

	ListCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affilinks_list_cache_total",
		Help: "List cache lookups and invalidations.",
	}, []string{"event"})

	DescriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affilinks_descriptions_total",
		Help: "AI description generation attempts by outcome.",
	}, []string{"result"})

	DescriptionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "affilinks_description_duration_seconds",
		Help:    "Latency of description generation calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
	})

	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affilinks_auth_events_total",
		Help: "Sign-up, sign-in and sign-out outcomes.",
	}, []string{"event"})

	LinksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "affilinks_links_total",
		Help: "Number of links stored in the database.",
	})
)
