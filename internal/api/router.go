package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/service"
	"github.com/event-qa-api/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const serviceName = "event-qa-api"

// HealthChecker reports store reachability for /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. health may be nil when no store
// connection backs the services.
func NewRouter(services *service.Services, health HealthChecker, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if gin.Mode() == gin.DebugMode && !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	// Handlers
	questionHandler := NewQuestionHandler(services, log)
	emailHandler := NewEmailQueueHandler(services, log)

	router.GET("/health", healthCheck(health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/submit-question", questionHandler.SubmitQuestion)
		apiGroup.POST("/process-email-queue", emailHandler.ProcessQueue)
		apiGroup.POST("/email-queue", emailHandler.Enqueue)
	}

	return router
}

// healthCheck returns the health status, including store reachability when available
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   serviceName,
		}

		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				resp["status"] = "unhealthy"
				resp["database"] = "unreachable"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
			resp["database"] = "ok"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": genericErrorMessage,
				})
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware propagates or assigns X-Request-ID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request completed")
	}
}

// metricsMiddleware records request counts and latency per route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		telemetry.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// corsMiddleware handles CORS; preflight requests end here with 204
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Fingerprint")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
