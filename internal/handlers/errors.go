package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// respondError maps domain errors onto HTTP responses. Anything not in the
// domain taxonomy is a 500 with a generic message; details stay in the logs.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrQuoteNotFound),
		errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNoAvailability),
		errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrQuoteExpired),
		errors.Is(err, models.ErrInvalidStateForConfirm),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrNotCancellable),
		errors.Is(err, models.ErrOverRelease):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
