// Package telemetry registers the service's Prometheus metrics.
//
// All metrics live in the default registry and are served by the router at GET /metrics.
// HTTP metrics are labelled with the gin route template (c.FullPath()), never the raw URL.
package telemetry

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Submission outcomes
const (
	OutcomeAccepted    = "accepted"
	OutcomeRateLimited = "rate_limited"
	OutcomeBadRequest  = "bad_request"
	OutcomeNotFound    = "not_found"
	OutcomeForbidden   = "forbidden"
	OutcomeError       = "error"
)

// Question intake metrics.
//
// RateLimitDenialsTotal is labelled by the limiter that denied: global, ip or fingerprint.
var (
	QuestionSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_submissions_total",
			Help: "Total number of question submissions, by outcome.",
		},
		[]string{"outcome"},
	)

	RateLimitDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_denials_total",
			Help: "Total number of submissions denied by a rate limiter, by limiter.",
		},
		[]string{"limiter"},
	)
)

// Email queue metrics
var (
	EmailsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_processed_total",
			Help: "Total number of queued emails driven to a terminal status, by status.",
		},
		[]string{"status"},
	)

	EmailBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "email_batch_duration_seconds",
			Help:    "Duration of one email queue processing run.",
			Buckets: prometheus.DefBuckets,
		},
	)

	EmailQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "email_queue_records",
			Help: "Number of email queue records by status, sampled after each processing run.",
		},
		[]string{"status"},
	)
)

// DBOpenConnections tracks the store connection pool
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples pool statistics every interval until ctx is cancelled
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration, log zerolog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
				log.Debug().Int("open_connections", db.Stats().OpenConnections).Msg("db stats sampled")
			}
		}
	}()
}
