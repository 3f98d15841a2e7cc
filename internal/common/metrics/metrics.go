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

	ImagesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "images_classified_total",
			Help: "Total number of images classified into buckets",
		},
		[]string{"category"},
	)

	SelectionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_fallbacks_total",
			Help: "Total number of selections that fell back to lexicographic ordering",
		},
		[]string{"template"},
	)

	MoviesRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_rendered_total",
			Help: "Total number of movie render attempts by result",
		},
		[]string{"template", "result"},
	)
)
