package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/ratelimit"
	"github.com/event-qa-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// QuestionHandler handles audience question submission
type QuestionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(services *service.Services, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		services: services,
		log:      log.With().Str("handler", "question").Logger(),
	}
}

// SubmitQuestion handles POST /api/submit-question
func (h *QuestionHandler) SubmitQuestion(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, service.MaxSubmitBody+1))
	if err != nil {
		writeError(c, h.log, models.NewBadRequest("Invalid request body"))
		return
	}

	result, err := h.services.Question.Submit(c.Request.Context(), clientIdentity(c.Request), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// clientIdentity derives the rate-limit identity from request headers: the first
// X-Forwarded-For entry, else Client-IP, else "unknown"
func clientIdentity(r *http.Request) models.ClientIdentity {
	ip := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		ip = strings.TrimSpace(first)
	}
	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("Client-IP"))
	}
	if ip == "" {
		ip = ratelimit.UnknownIdentity
	}

	fingerprint := strings.TrimSpace(r.Header.Get("X-Fingerprint"))
	if fingerprint == "" {
		fingerprint = ratelimit.UnknownIdentity
	}

	return models.ClientIdentity{IP: ip, Fingerprint: fingerprint}
}
