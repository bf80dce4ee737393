package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/email"
	"github.com/event-qa-api/internal/mocks"
	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/ratelimit"
	"github.com/event-qa-api/internal/service"
	"github.com/event-qa-api/internal/validation"
	"github.com/rs/zerolog"
)

func benchConfig() *config.Config {
	return &config.Config{
		RateLimit: config.RateLimitConfig{
			GlobalMax:         1 << 30,
			GlobalWindow:      time.Minute,
			IPMax:             1 << 30,
			IPWindow:          time.Hour,
			FingerprintMax:    1 << 30,
			FingerprintWindow: time.Hour,
		},
		Email: config.EmailConfig{
			From:      "Event Q&A <noreply@example.com>",
			BatchSize: 1000,
		},
	}
}

// BenchmarkSubmitQuestion benchmarks the full intake pipeline against in-memory stores
func BenchmarkSubmitQuestion(b *testing.B) {
	repos, events, _, _ := mocks.NewMockRepositories()
	enabled := true
	events.Put(&models.Event{
		ID:                       "evt-bench",
		Title:                    "Benchmark",
		Status:                   models.EventStatusPublished,
		EnableQuestionSubmission: &enabled,
	})

	svc := service.NewServices(repos, service.Dependencies{
		Limiter: ratelimit.NewMemoryLimiter(),
		Sender:  mocks.NewMockSender(),
	}, benchConfig(), zerolog.Nop())

	body := []byte(`{"eventId":"evt-bench","question":"How does the schedule work on day two?","author":"Sam"}`)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		identity := models.ClientIdentity{IP: fmt.Sprintf("10.0.%d.%d", i/256%256, i%256), Fingerprint: "unknown"}
		if _, err := svc.Question.Submit(ctx, identity, body); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "questions/sec")
}

// BenchmarkProcessQueue benchmarks draining a batch of 1000 queued emails
func BenchmarkProcessQueue(b *testing.B) {
	ctx := context.Background()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		repos, _, _, _ := mocks.NewMockRepositories()
		svc := service.NewServices(repos, service.Dependencies{
			Limiter: ratelimit.NewMemoryLimiter(),
			Sender:  mocks.NewMockSender(),
		}, benchConfig(), zerolog.Nop())
		for j := 0; j < 1000; j++ {
			_, err := svc.EmailQueue.Enqueue(ctx, &models.EnqueueEmailRequest{
				To:       fmt.Sprintf("user%04d@example.com", j),
				Subject:  "Reminder",
				Template: email.TemplateEventReminder,
				Data:     map[string]any{"eventTitle": "Benchmark"},
			})
			if err != nil {
				b.Fatal(err)
			}
		}
		b.StartTimer()

		report, err := svc.EmailQueue.ProcessQueue(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if report.Processed != 1000 {
			b.Fatalf("processed %d, want 1000", report.Processed)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "emails/sec")
}

// BenchmarkValidation benchmarks question validation
func BenchmarkValidation(b *testing.B) {
	inputs := []interface{}{
		"What time does the keynote start tomorrow morning?",
		"<b>Bold</b> question about the <i>venue</i> parking",
		strings.Repeat("long question text ", 60),
		"short",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = validation.ValidateQuestion(inputs[i%len(inputs)])
	}
}

// BenchmarkRenderTemplate benchmarks email rendering
func BenchmarkRenderTemplate(b *testing.B) {
	data := map[string]any{
		"eventTitle":   "Launch Day",
		"questionText": "Will slides be shared?",
		"authorName":   "Sam",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := email.Render(email.TemplateNewQuestion, data); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLimiterParallel benchmarks the in-memory limiter under contention
func BenchmarkLimiterParallel(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter()
	cfg := ratelimit.Config{Max: 1 << 30, Window: time.Minute}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := ratelimit.IPKey(fmt.Sprintf("10.0.0.%d", i%64))
			if _, err := limiter.Check(ctx, key, cfg); err != nil {
				b.Error(err)
				return
			}
			_ = limiter.Increment(ctx, key, cfg)
			i++
		}
	})
}
