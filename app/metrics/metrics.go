// Package metrics exposes Prometheus metrics for report building,
// page caching and background refreshes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticker_sentiment"

const (
	StatusSuccess = "success"
	StatusError   = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	// ReportsTotal counts report builds by source and outcome.
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Total number of sentiment reports built",
		},
		[]string{"source", "status"},
	)

	// ReportDuration measures report build duration.
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Duration of sentiment report builds in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	HeadlinesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "headlines_scored_total",
			Help:      "Total number of headlines scored",
		},
		[]string{"source"},
	)

	HistoryInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_inserted_total",
			Help:      "Total number of new headlines written to history",
		},
	)

	PageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_lookups_total",
			Help:      "Page cache lookups by result",
		},
		[]string{"result"},
	)

	// TaskRunsTotal counts background refresh task executions.
	TaskRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Total number of background task executions",
		},
		[]string{"type", "status"},
	)
)

// RecordReport records one report build.
func RecordReport(source, status string, headlines int, seconds float64) {
	ReportsTotal.WithLabelValues(source, status).Inc()
	ReportDuration.WithLabelValues(source).Observe(seconds)
	if headlines > 0 {
		HeadlinesScored.WithLabelValues(source).Add(float64(headlines))
	}
}

func RecordHistoryInserted(n int) {
	if n > 0 {
		HistoryInserted.Add(float64(n))
	}
}

func RecordCacheLookup(hit bool) {
	if hit {
		PageCacheLookups.WithLabelValues(CacheHit).Inc()
		return
	}
	PageCacheLookups.WithLabelValues(CacheMiss).Inc()
}

func RecordTaskRun(taskType string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	TaskRunsTotal.WithLabelValues(taskType, status).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
