package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderhk/travel-booking-backend/internal/cache"
	"github.com/wanderhk/travel-booking-backend/internal/clock"
	"github.com/wanderhk/travel-booking-backend/internal/database"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// QuoteService issues time-boxed price quotes. A quote is advisory: it locks
// the price, not the inventory, and may be consumed by any number of bookings
// while valid. Availability is re-checked when the booking is made.
type QuoteService struct {
	quoteRepo     *database.QuoteRepository
	inventoryRepo *database.InventoryRepository
	pricing       *PricingService
	quoteCache    *cache.QuoteCache
	clock         clock.Clock
	quoteTTL      time.Duration
	logger        *logrus.Logger
}

// NewQuoteService creates a new QuoteService. quoteCache may be nil, in which
// case every lookup goes straight to the database.
func NewQuoteService(
	quoteRepo *database.QuoteRepository,
	inventoryRepo *database.InventoryRepository,
	pricing *PricingService,
	quoteCache *cache.QuoteCache,
	clk clock.Clock,
	quoteTTL time.Duration,
	logger *logrus.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:     quoteRepo,
		inventoryRepo: inventoryRepo,
		pricing:       pricing,
		quoteCache:    quoteCache,
		clock:         clk,
		quoteTTL:      quoteTTL,
		logger:        logger,
	}
}

// CreateQuote prices the requested composition against the slot's base price
// and persists an immutable quote valid for the configured TTL.
// Returns ErrNoAvailability when the slot does not exist or is sold out at
// quote time. This is a courtesy check only; nothing is held.
func (s *QuoteService) CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error) {
	slot, err := s.inventoryRepo.GetSlot(req.ProductID, req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}
	if slot == nil || slot.Remaining < req.PassengerMix.TotalPassengers() {
		return nil, models.ErrNoAvailability
	}

	currency := req.Currency
	if currency == "" {
		currency = slot.Currency
	}

	priced := s.pricing.Price(slot.BasePrice, req.PassengerMix, req.Extras)

	now := s.clock.Now()
	quote := &models.Quote{
		ID:           uuid.New(),
		ProductID:    req.ProductID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		PassengerMix: req.PassengerMix,
		Extras:       req.Extras,
		Breakdown:    priced.Breakdown,
		Total:        priced.Total,
		Currency:     currency,
		CreatedAt:    now,
		ValidUntil:   now.Add(s.quoteTTL),
	}

	if err := s.quoteRepo.Create(quote); err != nil {
		return nil, fmt.Errorf("failed to persist quote: %w", err)
	}

	if s.quoteCache != nil {
		if err := s.quoteCache.Set(ctx, quote, now); err != nil {
			s.logger.WithError(err).WithField("quote_id", quote.ID).Warn("Failed to cache quote")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"quote_id":    quote.ID,
		"product_id":  quote.ProductID,
		"date":        quote.Date,
		"total":       quote.Total,
		"currency":    quote.Currency,
		"valid_until": quote.ValidUntil,
	}).Info("Quote created")

	return quote, nil
}

// GetQuote resolves a quote by id, cache first. Returns ErrQuoteNotFound for
// unknown or purged ids and ErrQuoteExpired once the validity window has
// passed.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	now := s.clock.Now()

	if s.quoteCache != nil {
		cached, err := s.quoteCache.Get(ctx, quoteID.String())
		if err != nil {
			s.logger.WithError(err).WithField("quote_id", quoteID).Warn("Quote cache read failed, falling back to database")
		} else if cached != nil {
			if cached.IsExpired(now) {
				return nil, models.ErrQuoteExpired
			}
			return cached, nil
		}
	}

	quote, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, models.ErrQuoteNotFound
	}
	if quote.IsExpired(now) {
		return nil, models.ErrQuoteExpired
	}
	return quote, nil
}

// PurgeExpired garbage-collects quotes past their validity window and returns
// how many were removed. Redis entries evict themselves via TTL.
func (s *QuoteService) PurgeExpired() (int, error) {
	return s.quoteRepo.PurgeExpired(s.clock.Now())
}
