package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	ConnectionsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "connections_accepted_total",
			Help: "Total accepted TCP connections",
		},
	)

	// Worker pool
	WorkerQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
		[]string{"pool"},
	)
	WorkersBusy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_busy",
			Help: "Workers currently running a task",
		},
		[]string{"pool"},
	)
	TasksSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_submitted_total",
			Help: "Tasks accepted by the pool",
		},
		[]string{"pool"},
	)
	TasksRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_rejected_total",
			Help: "Tasks refused because the pool was shut down",
		},
		[]string{"pool"},
	)
	TasksCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_completed_total",
			Help: "Tasks that finished, including panicked ones",
		},
		[]string{"pool"},
	)
	TasksPanicked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_panicked_total",
			Help: "Tasks that terminated with a panic",
		},
		[]string{"pool"},
	)
	TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_task_duration_seconds",
			Help:    "Time spent running a task.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pool"},
	)

	initOnce sync.Once
)

// /metrics endpoint handler
var Handler = promhttp.Handler

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			ConnectionsAccepted,
			WorkerQueueDepth,
			WorkersBusy,
			TasksSubmitted,
			TasksRejected,
			TasksCompleted,
			TasksPanicked,
			TaskDuration,
		)
	})
}
