package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wanderhk/travel-booking-backend/internal/clock"
	"github.com/wanderhk/travel-booking-backend/internal/database"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// BookingService drives the booking lifecycle: creation against the inventory
// ledger, confirmation, cancellation with policy-based refunds, and expiry of
// stale holds. All status transitions go through the repository's guarded
// updates, so exactly one caller wins each transition and inventory is
// released exactly once.
type BookingService struct {
	bookingRepo   *database.BookingRepository
	inventoryRepo *database.InventoryRepository
	productRepo   *database.ProductRepository
	quotes        *QuoteService
	pricing       *PricingService
	clock         clock.Clock
	holdTTL       time.Duration
	logger        *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	inventoryRepo *database.InventoryRepository,
	productRepo *database.ProductRepository,
	quotes *QuoteService,
	pricing *PricingService,
	clk clock.Clock,
	holdTTL time.Duration,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		quotes:        quotes,
		pricing:       pricing,
		clock:         clk,
		holdTTL:       holdTTL,
		logger:        logger,
	}
}

// CreateBooking reserves inventory and persists the booking in its initial
// status. The reservation happens before the insert; if the insert fails the
// reservation is compensated by an immediate release so no inventory leaks.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		productID    uuid.UUID
		date         string
		startTime    string
		passengerMix models.PassengerMix
		extras       models.Extras
		total        float64
		currency     string
	)

	if req.QuoteID != nil {
		quote, err := s.quotes.GetQuote(ctx, *req.QuoteID)
		if err != nil {
			return nil, err
		}
		productID = quote.ProductID
		date = quote.Date
		startTime = quote.StartTime
		passengerMix = quote.PassengerMix
		extras = quote.Extras
		total = quote.Total
		currency = quote.Currency
	} else {
		productID = *req.ProductID
		date = req.Date
		startTime = req.StartTime
		passengerMix = req.PassengerMix
		extras = req.Extras

		slot, err := s.inventoryRepo.GetSlot(productID, date, startTime)
		if err != nil {
			return nil, err
		}
		if slot == nil {
			return nil, models.ErrNoAvailability
		}
		currency = req.Currency
		if currency == "" {
			currency = slot.Currency
		}
		total = s.pricing.Price(slot.BasePrice, passengerMix, extras).Total
	}

	product, err := s.productRepo.GetForBooking(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, models.ErrProductNotFound
	}

	quantity := passengerMix.TotalPassengers()
	if err := s.inventoryRepo.Reserve(productID, date, startTime, quantity); err != nil {
		if err == models.ErrSlotNotFound {
			return nil, models.ErrNoAvailability
		}
		return nil, err
	}

	now := s.clock.Now()
	booking := &models.Booking{
		ID:             uuid.New(),
		UserID:         userID,
		SupplierID:     product.SupplierID,
		ProductID:      productID,
		Date:           date,
		StartTime:      startTime,
		PassengerMix:   passengerMix,
		PassengerCount: quantity,
		Extras:         extras,
		Total:          total,
		Currency:       currency,
		Status:         req.PaymentMode.InitialStatus(),
		PolicySnapshot: product.Policies,
		UserInfo:       req.UserInfo,
		Metadata:       req.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.holdTTL),
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		// The reservation is already durable, so give it back. A failed
		// release here means leaked inventory and needs operator attention.
		if rerr := s.inventoryRepo.Release(productID, date, startTime, quantity); rerr != nil {
			s.logger.WithError(rerr).WithFields(logrus.Fields{
				"event":      "inventory_leak",
				"product_id": productID,
				"date":       date,
				"start_time": startTime,
				"quantity":   quantity,
			}).Error("Failed to release inventory after booking persist failure")
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    userID,
		"product_id": productID,
		"date":       date,
		"status":     booking.Status,
		"total":      total,
		"expires_at": booking.ExpiresAt,
	}).Info("Booking created")

	return &models.CreateBookingResponse{
		BookingID: booking.ID,
		Status:    booking.Status,
		Total:     total,
		Currency:  currency,
		ExpiresAt: booking.ExpiresAt,
	}, nil
}

// GetBooking returns the caller's booking. A stale hold is rolled to expired
// on read, so callers never observe a pending booking past its window.
func (s *BookingService) GetBooking(userID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getOwned(userID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.HoldExpired(s.clock.Now()) {
		s.expire(booking)
		booking.Status = models.BookingStatusExpired
	}
	return booking, nil
}

// ListBookings returns the caller's bookings, newest first. Stale holds are
// rolled to expired the same way GetBooking does.
func (s *BookingService) ListBookings(userID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.GetByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range bookings {
		if bookings[i].HoldExpired(now) {
			s.expire(&bookings[i])
			bookings[i].Status = models.BookingStatusExpired
		}
	}
	return bookings, nil
}

// ConfirmBooking transitions the caller's booking to confirmed, recording the
// payment reference. Returns ErrInvalidStateForConfirm when the booking is in
// a terminal state or its hold window has lapsed.
func (s *BookingService) ConfirmBooking(userID, bookingID uuid.UUID, paymentRef string) (*models.Booking, error) {
	booking, err := s.getOwned(userID, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if booking.HoldExpired(now) {
		s.expire(booking)
		return nil, models.ErrInvalidStateForConfirm
	}

	won, err := s.bookingRepo.Confirm(bookingID, paymentRef, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the transition to a concurrent cancel, expiry, or an earlier
		// confirm.
		return nil, models.ErrInvalidStateForConfirm
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  bookingID,
		"user_id":     userID,
		"payment_ref": paymentRef,
	}).Info("Booking confirmed")

	booking.Status = models.BookingStatusConfirmed
	booking.PaymentRef = &paymentRef
	booking.ConfirmedAt = &now
	booking.UpdatedAt = now
	return booking, nil
}

// CancelBooking transitions the caller's booking to cancelled, computes the
// refund from the policy snapshot taken at booking time, and releases the
// held inventory. The guarded status update is the mutual-exclusion point
// against the expiry sweeper, so the release happens at most once.
func (s *BookingService) CancelBooking(userID, bookingID uuid.UUID, reason string) (*models.CancelBookingResponse, error) {
	booking, err := s.getOwned(userID, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if booking.HoldExpired(now) {
		s.expire(booking)
		return nil, models.ErrNotCancellable
	}

	switch booking.Status {
	case models.BookingStatusCancelled:
		return nil, models.ErrAlreadyCancelled
	case models.BookingStatusExpired, models.BookingStatusCompleted:
		return nil, models.ErrNotCancellable
	}

	refund := s.computeRefund(booking, now)

	won, err := s.bookingRepo.MarkCancelled(bookingID, reason, refund, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Re-read to report what beat us.
		current, rerr := s.bookingRepo.GetByID(bookingID)
		if rerr != nil {
			return nil, rerr
		}
		if current != nil && current.Status == models.BookingStatusCancelled {
			return nil, models.ErrAlreadyCancelled
		}
		return nil, models.ErrNotCancellable
	}

	s.releaseHeld(booking, "cancel")

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userID,
		"refund":     refund,
		"reason":     reason,
	}).Info("Booking cancelled")

	return &models.CancelBookingResponse{
		Status:       models.BookingStatusCancelled,
		RefundAmount: refund,
		Currency:     booking.Currency,
	}, nil
}

// SweepExpired rolls stale holds to expired and releases their inventory, up
// to limit bookings per call. Returns how many bookings this sweep expired.
func (s *BookingService) SweepExpired(limit int) (int, error) {
	now := s.clock.Now()
	stale, err := s.bookingRepo.GetExpiredBookings(now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		if s.expire(&stale[i]) {
			expired++
		}
	}
	return expired, nil
}

// CompletePast rolls confirmed bookings whose travel date is before today to
// completed.
func (s *BookingService) CompletePast() (int, error) {
	now := s.clock.Now()
	cutoff := now.Format(models.DateLayout)
	return s.bookingRepo.MarkCompletedBefore(cutoff, now)
}

// getOwned fetches a booking and enforces ownership. A booking belonging to
// another user is reported as not found rather than forbidden.
func (s *BookingService) getOwned(userID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.UserID != userID {
		return nil, models.ErrBookingNotFound
	}
	return booking, nil
}

// expire attempts the expired transition and, when this caller wins it,
// releases the booking's inventory. Safe to call concurrently with the
// sweeper and with lazy expiry on reads.
func (s *BookingService) expire(booking *models.Booking) bool {
	won, err := s.bookingRepo.MarkExpired(booking.ID, s.clock.Now())
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to expire booking")
		return false
	}
	if !won {
		return false
	}

	s.releaseHeld(booking, "expiry")

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"product_id": booking.ProductID,
		"date":       booking.Date,
		"quantity":   booking.PassengerCount,
	}).Info("Booking expired, inventory released")
	return true
}

// releaseHeld gives a terminal booking's inventory back to the ledger. The
// status transition is already durable at this point, so a failure here is
// leaked inventory rather than a failed request.
func (s *BookingService) releaseHeld(booking *models.Booking, cause string) {
	err := s.inventoryRepo.Release(booking.ProductID, booking.Date, booking.StartTime, booking.PassengerCount)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":      "inventory_leak",
			"cause":      cause,
			"booking_id": booking.ID,
			"product_id": booking.ProductID,
			"date":       booking.Date,
			"start_time": booking.StartTime,
			"quantity":   booking.PassengerCount,
		}).Error("Failed to release inventory for terminal booking")
	}
}

// computeRefund applies the snapshot's cancellation tiers. With no tiers the
// refund is the full amount. With tiers, the tier with the largest daysBefore
// satisfied by the cancellation lead time applies; cancelling inside the
// tightest tier refunds nothing.
func (s *BookingService) computeRefund(booking *models.Booking, now time.Time) float64 {
	tiers := booking.PolicySnapshot.CancellationTiers()
	if len(tiers) == 0 {
		return booking.Total
	}

	travelDate, err := time.Parse(models.DateLayout, booking.Date)
	if err != nil {
		return booking.Total
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysBefore := int(travelDate.Sub(today).Hours() / 24)

	pct := 0.0
	best := -1
	for _, tier := range tiers {
		if daysBefore >= tier.DaysBefore && tier.DaysBefore > best {
			best = tier.DaysBefore
			pct = tier.RefundPct
		}
	}
	return roundMoney(booking.Total * pct / 100)
}
