package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"habitquest/internal/payment"
	"habitquest/internal/service"
)

// respondError maps domain errors onto HTTP statuses. Anything unmapped is a
// plain 500 without the internal message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "already completed today"})
	case errors.Is(err, service.ErrSkillAlreadyUnlocked):
		c.JSON(http.StatusConflict, gin.H{"error": "skill already unlocked"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, service.ErrInsufficientLevel):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "level requirement not met"})
	case errors.Is(err, service.ErrInsufficientCurrency):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient currency"})
	case errors.Is(err, service.ErrNoPayablePenalties):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no unpaid penalties selected"})
	case errors.Is(err, service.ErrPaymentsNotConfigured):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "payments not configured"})
	case errors.Is(err, payment.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// userID reads the authenticated user id set by the auth middleware.
func userID(c *gin.Context) int64 {
	v, _ := c.Get("user_id")
	id, _ := v.(int64)
	return id
}
