package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderhk/travel-booking-backend/internal/database"
	"github.com/wanderhk/travel-booking-backend/internal/middleware"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// InventoryHandler handles supplier-side inventory management
type InventoryHandler struct {
	inventoryRepo *database.InventoryRepository
	productRepo   *database.ProductRepository
	logger        *logrus.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryRepo *database.InventoryRepository, productRepo *database.ProductRepository, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		logger:        logger,
	}
}

// UpdateInventory upserts inventory slots for a product
// @Summary Update product inventory
// @Description Upsert capacity, price and currency for a product's slots. Capacity edits adjust remaining by the delta so live reservations are preserved.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.UpdateInventoryRequest true "Slot updates"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Not the product's supplier"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Security BearerAuth
// @Router /api/v1/products/{id}/inventory [put]
func (h *InventoryHandler) UpdateInventory(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req models.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	supplierID, err := h.productRepo.GetOwner(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	if supplierID == uuid.Nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if supplierID != userCtx.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't manage this product"})
		return
	}

	if err := h.inventoryRepo.UpsertSlots(productID, req.Updates); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"product_id":  productID,
		"supplier_id": supplierID,
		"slots":       len(req.Updates),
	}).Info("Inventory updated")

	c.JSON(http.StatusOK, gin.H{
		"productId": productID,
		"updated":   len(req.Updates),
	})
}
