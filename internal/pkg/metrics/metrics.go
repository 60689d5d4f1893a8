// Package metrics holds the prometheus collectors of the service. They are registered
// on the default registry and served by the /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "iod"

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Join and filter pipeline executions per view.",
	}, []string{"view"})

	JoinDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "join_dropped_rows_total",
		Help:      "Area rows dropped because no boundary matched the join key.",
	}, []string{"view"})

	DatasetFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dataset_fetches_total",
		Help:      "Upstream dataset loads by dataset and outcome.",
	}, []string{"dataset", "outcome"})

	DatasetFetchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dataset_fetch_seconds",
		Help:      "Time spent fetching and parsing one dataset.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"dataset"})

	AccessAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_attempts_total",
		Help:      "Access gate outcomes.",
	}, []string{"outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions currently held in memory.",
	})
)

// ObserveFetch records one dataset load.
func ObserveFetch(dataset string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DatasetFetches.WithLabelValues(dataset, outcome).Inc()
	DatasetFetchSeconds.WithLabelValues(dataset).Observe(time.Since(started).Seconds())
}

// ObservePipeline records one pipeline run and how many rows its join lost.
func ObservePipeline(view string, dropped int) {
	PipelineRuns.WithLabelValues(view).Inc()
	if dropped > 0 {
		JoinDropped.WithLabelValues(view).Add(float64(dropped))
	}
}
