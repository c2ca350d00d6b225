package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	statusChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "overpass",
			Subsystem: "status",
			Name:      "checks_total",
			Help:      "Status probes by outcome (available, wait)",
		},
		[]string{"outcome"},
	)

	waitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "overpass",
			Subsystem: "status",
			Name:      "wait_seconds",
			Help:      "Announced wait before a query slot frees up",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "overpass",
			Subsystem: "query",
			Name:      "total",
			Help:      "Query submissions by outcome",
		},
		[]string{"outcome"},
	)

	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "overpass",
			Subsystem: "job",
			Name:      "runs_total",
			Help:      "Job runs by job id and outcome (updated, skipped, failed)",
		},
		[]string{"job", "outcome"},
	)

	bytesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "overpass",
			Subsystem: "job",
			Name:      "bytes_written_total",
			Help:      "Bytes of query results written to the workdir",
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(statusChecksTotal, waitSeconds, queriesTotal, jobRunsTotal, bytesWritten)
}

// ObserveStatus records the outcome of one status probe.
func ObserveStatus(wait int) {
	if wait <= 0 {
		statusChecksTotal.WithLabelValues("available").Inc()
		return
	}
	statusChecksTotal.WithLabelValues("wait").Inc()
	waitSeconds.Observe(float64(wait))
}

// ObserveQuery records a query submission.
func ObserveQuery(err error) {
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return
	}
	queriesTotal.WithLabelValues("ok").Inc()
}

// ObserveJob records a job run outcome.
func ObserveJob(job, outcome string) {
	jobRunsTotal.WithLabelValues(job, outcome).Inc()
}

// ObserveBytes records the size of a written result.
func ObserveBytes(job string, n int) {
	if n > 0 {
		bytesWritten.WithLabelValues(job).Add(float64(n))
	}
}

// Router serves /metrics and /healthz.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}
