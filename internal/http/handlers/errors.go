package handlers

import (
	"errors"
	"net/http"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to HTTP statuses. Server faults are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInvalidReferralCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrRaspadinhaNotFound),
		errors.Is(err, domain.ErrPurchaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrAlreadyRevealed),
		errors.Is(err, domain.ErrPendingWithdrawal),
		errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})

	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
