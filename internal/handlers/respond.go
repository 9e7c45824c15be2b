package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/middleware"
)

const dateParamLayout = "2006-01-02"

// respondServiceError maps service-layer sentinel errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden operation", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConsistency):
		logger.Error("Ledger consistency violation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger inconsistency detected, entry quarantined for review"})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}

// respondBindError reports a malformed or invalid request body.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter. When the
// parameter is absent the zero time is returned with ok=true.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateParamLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// requireDateQuery parses a mandatory YYYY-MM-DD query parameter.
func requireDateQuery(c *gin.Context, name string) (time.Time, bool) {
	if c.Query(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required (YYYY-MM-DD)"})
		return time.Time{}, false
	}
	return parseDateQuery(c, name)
}
