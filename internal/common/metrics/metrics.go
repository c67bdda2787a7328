// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_application_transitions_total",
			Help: "Application status transitions committed, by target status",
		},
		[]string{"to_status"},
	)

	BatchItemsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_batch_items_failed_total",
			Help: "Per-item failures inside select/reject batches",
		},
		[]string{"operation", "error_code"},
	)

	SubmissionsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_submissions_received_total",
			Help: "Mission submissions accepted, split into first submissions and resubmissions",
		},
		[]string{"kind"},
	)

	ReviewDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_review_decisions_total",
			Help: "Review decisions applied",
		},
		[]string{"decision"},
	)

	SideEffectsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_side_effects_total",
			Help: "Notification and email deliveries by outcome",
		},
		[]string{"kind", "channel", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mission_cache_lookups_total",
			Help: "Redis cache lookups by result",
		},
		[]string{"cache", "result"},
	)
)
