package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wanderhk/travel-booking-backend/internal/database"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// AvailabilityHandler serves the public availability calendar
type AvailabilityHandler struct {
	inventoryRepo *database.InventoryRepository
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(inventoryRepo *database.InventoryRepository) *AvailabilityHandler {
	return &AvailabilityHandler{inventoryRepo: inventoryRepo}
}

// GetAvailability lists a product's open slots in a date range
// @Summary Get product availability
// @Description List slots with remaining capacity for a product. Defaults to the next 90 days.
// @Tags Availability
// @Produce json
// @Param id path string true "Product ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Open slots"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Router /api/v1/products/{id}/availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	today := time.Now().UTC()
	from := c.DefaultQuery("from", today.Format(models.DateLayout))
	to := c.DefaultQuery("to", today.AddDate(0, 0, 90).Format(models.DateLayout))

	if _, err := time.Parse(models.DateLayout, from); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
		return
	}
	if _, err := time.Parse(models.DateLayout, to); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
		return
	}
	if to < from {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	slots, err := h.inventoryRepo.GetAvailability(productID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	if slots == nil {
		slots = []models.InventorySlot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"productId": productID,
		"from":      from,
		"to":        to,
		"slots":     slots,
	})
}
