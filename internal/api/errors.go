package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/event-qa-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const genericErrorMessage = "Something went wrong. Please try again later."

var statusByCode = map[models.ErrorCode]int{
	models.CodeBadRequest:       http.StatusBadRequest,
	models.CodeRateLimited:      http.StatusTooManyRequests,
	models.CodeNotFound:         http.StatusNotFound,
	models.CodeForbidden:        http.StatusForbidden,
	models.CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	models.CodeUpstreamFailure:  http.StatusBadGateway,
	models.CodeInternal:         http.StatusInternalServerError,
}

// writeError maps an error onto the JSON error contract. Anything that is not an
// *models.AppError is treated as INTERNAL and its detail never reaches the caller.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternal(err)
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(appErr.Err).Str("code", string(appErr.Code)).Msg("Request failed")
		c.JSON(status, gin.H{"error": genericErrorMessage})
		return
	}

	if appErr.Code == models.CodeRateLimited {
		c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
		c.JSON(status, gin.H{
			"error":      appErr.Message,
			"retryAfter": appErr.RetryAfter,
		})
		return
	}

	c.JSON(status, gin.H{"error": appErr.Message})
}
