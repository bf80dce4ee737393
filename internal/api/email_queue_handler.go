package api

import (
	"fmt"
	"net/http"

	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EmailQueueHandler handles email queue endpoints
type EmailQueueHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEmailQueueHandler creates a new EmailQueueHandler
func NewEmailQueueHandler(services *service.Services, log zerolog.Logger) *EmailQueueHandler {
	return &EmailQueueHandler{
		services: services,
		log:      log.With().Str("handler", "email_queue").Logger(),
	}
}

// ProcessQueue handles POST /api/process-email-queue
func (h *EmailQueueHandler) ProcessQueue(c *gin.Context) {
	report, err := h.services.EmailQueue.ProcessQueue(c.Request.Context())
	if err != nil {
		writeError(c, h.log, models.NewInternal(fmt.Errorf("process email queue: %w", err)))
		return
	}

	c.JSON(http.StatusOK, report)
}

// Enqueue handles POST /api/email-queue
func (h *EmailQueueHandler) Enqueue(c *gin.Context) {
	var req models.EnqueueEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, models.NewBadRequest("Invalid JSON in request body"))
		return
	}

	rec, err := h.services.EmailQueue.Enqueue(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     rec.ID,
		"status": rec.Status,
	})
}
