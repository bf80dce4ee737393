package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_AllRegistered(t *testing.T) {
	cases := []struct {
		name string
		c    prometheus.Collector
	}{
		{"http_requests_total", HTTPRequestsTotal},
		{"http_request_duration_seconds", HTTPRequestDuration},
		{"question_submissions_total", QuestionSubmissionsTotal},
		{"rate_limit_denials_total", RateLimitDenialsTotal},
		{"emails_processed_total", EmailsProcessedTotal},
		{"email_batch_duration_seconds", EmailBatchDuration},
		{"email_queue_records", EmailQueueDepth},
		{"db_open_connections", DBOpenConnections},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := prometheus.Register(tc.c)
			var already prometheus.AlreadyRegisteredError
			assert.ErrorAs(t, err, &already, "expected %s to be registered already", tc.name)
		})
	}
}

func TestQuestionSubmissionsTotal_Increments(t *testing.T) {
	c := QuestionSubmissionsTotal.WithLabelValues(OutcomeAccepted)
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
