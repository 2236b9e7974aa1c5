package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks per-job outcomes for the cron worker.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron collectors. A nil registerer yields a
// no-op instance, which tests use.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "barberlane",
		Subsystem: "cron",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock duration of each cron job run.",
		// Jobs range from sub-second prunes to multi-minute reminder passes.
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "barberlane",
		Subsystem: "cron",
		Name:      "job_success_total",
		Help:      "Completed cron job runs.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "barberlane",
		Subsystem: "cron",
		Name:      "job_failure_total",
		Help:      "Failed cron job runs.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &CronJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records how long the named job ran.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(jobLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a completed run of the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(jobLabel(job)).Inc()
}

// IncFailure counts a failed run of the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(jobLabel(job)).Inc()
}

func jobLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
