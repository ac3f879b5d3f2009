package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wanderhk/travel-booking-backend/internal/models"
	"github.com/wanderhk/travel-booking-backend/internal/services"
)

// QuoteHandler handles quote operations
type QuoteHandler struct {
	quoteService *services.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// CreateQuote creates a time-boxed price quote
// @Summary Create a price quote
// @Description Price a passenger composition against a product's slot. The quote locks the price, not the inventory.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body models.CreateQuoteRequest true "Quote request"
// @Success 201 {object} models.Quote "Quote created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 409 {object} map[string]interface{} "No availability"
// @Security BearerAuth
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req models.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// GetQuote returns a quote by id
// @Summary Get a quote
// @Description Fetch a previously created quote. Expired quotes return 409.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} models.Quote "Quote"
// @Failure 404 {object} map[string]interface{} "Quote not found"
// @Failure 409 {object} map[string]interface{} "Quote expired"
// @Security BearerAuth
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote id"})
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), quoteID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
