package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

const bookingColumns = `
	id, user_id, supplier_id, product_id, date, start_time,
	passenger_mix, passenger_count, extras, total, currency, status,
	policy_snapshot, user_info, metadata, payment_ref, refund_amount,
	cancel_reason, created_at, updated_at, confirmed_at, cancelled_at, expires_at`

// BookingRepository persists bookings and implements the conditional status
// transitions of the lifecycle state machine. Each transition is a guarded
// UPDATE whose RowsAffected result tells the caller whether it won the
// transition; the status change itself is the mutual-exclusion point between
// cancel and expiry, so inventory is only ever released by the winner.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking record. The caller has already reserved
// inventory; a failure here is compensated by the booking service.
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings
			(id, user_id, supplier_id, product_id, date, start_time,
			 passenger_mix, passenger_count, extras, total, currency, status,
			 policy_snapshot, user_info, metadata, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.Exec(query,
		booking.ID, booking.UserID, booking.SupplierID, booking.ProductID,
		booking.Date, booking.StartTime,
		booking.PassengerMix, booking.PassengerCount, booking.Extras,
		booking.Total, booking.Currency, booking.Status,
		booking.PolicySnapshot, booking.UserInfo, booking.Metadata,
		booking.CreatedAt, booking.UpdatedAt, booking.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID returns a booking by id, or nil when it does not exist.
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT` + bookingColumns + `
		FROM bookings WHERE id = $1`

	err := r.db.Get(&booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetByUser returns a user's bookings, newest first.
func (r *BookingRepository) GetByUser(userID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Confirm transitions pending/awaiting_payment -> confirmed, recording the
// payment reference. The hold window is part of the guard: a booking past its
// expiresAt cannot be confirmed even if the sweeper has not reached it yet.
// Returns true when this caller won the transition.
func (r *BookingRepository) Confirm(bookingID uuid.UUID, paymentRef string, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'confirmed',
		    payment_ref = $2,
		    confirmed_at = $3,
		    updated_at = $3
		WHERE id = $1
		  AND status IN ('pending', 'awaiting_payment')
		  AND expires_at > $3`

	result, err := r.db.Exec(query, bookingID, paymentRef, now)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MarkCancelled transitions pending/awaiting_payment/confirmed -> cancelled,
// recording the reason and the refund computed from the policy snapshot.
// Returns true when this caller won the transition.
func (r *BookingRepository) MarkCancelled(bookingID uuid.UUID, reason string, refundAmount float64, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled',
		    cancel_reason = $2,
		    refund_amount = $3,
		    cancelled_at = $4,
		    updated_at = $4
		WHERE id = $1
		  AND status IN ('pending', 'awaiting_payment', 'confirmed')`

	result, err := r.db.Exec(query, bookingID, reason, refundAmount, now)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MarkExpired transitions a stale pending/awaiting_payment booking ->
// expired. Returns true when this caller won the transition and therefore
// owes the inventory release.
func (r *BookingRepository) MarkExpired(bookingID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'expired', updated_at = $2
		WHERE id = $1
		  AND status IN ('pending', 'awaiting_payment')
		  AND expires_at <= $2`

	result, err := r.db.Exec(query, bookingID, now)
	if err != nil {
		return false, fmt.Errorf("failed to expire booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetExpiredBookings returns stale pending/awaiting_payment bookings past
// their hold window, oldest first, up to limit.
func (r *BookingRepository) GetExpiredBookings(now time.Time, limit int) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE status IN ('pending', 'awaiting_payment') AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get expired bookings: %w", err)
	}
	return bookings, nil
}

// MarkCompletedBefore rolls confirmed bookings with a travel date before the
// cutoff to completed. No inventory is released for this transition.
func (r *BookingRepository) MarkCompletedBefore(cutoffDate string, now time.Time) (int, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = $2
		WHERE status = 'confirmed' AND date < $1`

	result, err := r.db.Exec(query, cutoffDate, now)
	if err != nil {
		return 0, fmt.Errorf("failed to complete past bookings: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
