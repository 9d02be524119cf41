package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	modeStatic  = "static"
	modeDynamic = "dynamic"
)

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindery_resolver_resolutions_total",
			Help: "Number of resolutions by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
	permutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bindery_resolver_permutations_total",
			Help: "Number of candidate permutations queued, by kind.",
		},
		[]string{"kind"},
	)

	resolutionAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bindery_resolver_attempts",
			Help:    "Candidate maps tried per resolution.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
	resolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bindery_resolver_resolution_duration_seconds",
			Help:    "Time taken to resolve a module.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		resolutionsTotal,
		permutationsTotal,
		resolutionAttempts,
		resolutionDuration,
	)
}

func observe(mode string, a *attempt, wm WireMap, err error, start time.Time) {
	resolutionsTotal.WithLabelValues(mode, outcome(wm, err)).Inc()
	resolutionDuration.Observe(time.Since(start).Seconds())
	if a.tries > 0 {
		resolutionAttempts.Observe(float64(a.tries))
	}
}

func outcome(wm WireMap, err error) string {
	switch {
	case err == nil && wm == nil:
		return "declined"
	case err == nil:
		return "resolved"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrMissingRequirement):
		return "missing_requirement"
	case errors.Is(err, ErrEnvironment):
		return "environment"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
