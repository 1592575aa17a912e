package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billnotify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billnotify_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// RunsTotal pipeline run outcomes per trigger
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billnotify_runs_total",
			Help: "Number of completed or aborted notification runs",
		},
		[]string{"trigger", "outcome"},
	)

	// DeliveriesTotal per-subscriber delivery attempts
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billnotify_deliveries_total",
			Help: "Number of notification delivery attempts",
		},
		[]string{"status"},
	)

	// RecordsReaped delivery records removed after retention
	RecordsReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billnotify_records_reaped_total",
			Help: "Number of delivery records reaped by cleanup",
		},
	)

	// RunDuration how long a whole pipeline run takes
	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billnotify_run_duration_seconds",
			Help:    "Duration of notification pipeline runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trigger"},
	)
)

func Init() {
	prometheus.MustRegister(HTTPRequests, RequestDuration, RunsTotal, DeliveriesTotal, RecordsReaped, RunDuration)
}
