package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// BOOKING STATUSES (matches DB ENUM booking_status)
// ============================================================================

// BookingStatus represents the state of a booking in its lifecycle.
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"          // Reserved, payment deferred
	BookingStatusAwaitingPayment BookingStatus = "awaiting_payment" // Reserved, pay_now flow in progress
	BookingStatusConfirmed       BookingStatus = "confirmed"        // Payment reference recorded
	BookingStatusCancelled       BookingStatus = "cancelled"        // Terminal, inventory released
	BookingStatusExpired         BookingStatus = "expired"          // Terminal, hold window elapsed, inventory released
	BookingStatusCompleted       BookingStatus = "completed"        // Terminal, travel date passed on a confirmed booking
)

// PaymentMode selects the initial booking status.
type PaymentMode string

const (
	PaymentModePayNow   PaymentMode = "pay_now"
	PaymentModePayLater PaymentMode = "pay_later"
)

// InitialStatus maps the payment mode onto the booking's starting state.
func (m PaymentMode) InitialStatus() BookingStatus {
	if m == PaymentModePayNow {
		return BookingStatusAwaitingPayment
	}
	return BookingStatusPending
}

// ============================================================================
// POLICY SNAPSHOT
// ============================================================================

// CancellationTier is one refund tier of a cancellation policy: RefundPct
// applies when the booking is cancelled at least DaysBefore days ahead of
// the travel date.
type CancellationTier struct {
	DaysBefore int     `json:"days_before"`
	RefundPct  float64 `json:"refund_pct"`
}

// CancellationPolicy is the structured part of a policy document this engine
// understands. Everything else in the snapshot is carried opaquely.
type CancellationPolicy struct {
	Tiers []CancellationTier `json:"tiers,omitempty"`
}

// PolicySnapshot is a deep copy of the product's policy document taken at
// booking time. It is immutable thereafter, so refunds are computed against
// the terms in force when the booking was made.
type PolicySnapshot map[string]interface{}

// CancellationTiers decodes the cancellation section of the snapshot, if any.
func (p PolicySnapshot) CancellationTiers() []CancellationTier {
	raw, ok := p["cancellation"]
	if !ok {
		return nil
	}
	bytes, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var policy CancellationPolicy
	if err := json.Unmarshal(bytes, &policy); err != nil {
		return nil
	}
	return policy.Tiers
}

func (p PolicySnapshot) Value() (driver.Value, error) {
	if p == nil {
		return json.Marshal(PolicySnapshot{})
	}
	return json.Marshal(p)
}

func (p *PolicySnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for PolicySnapshot")
	}
	return json.Unmarshal(bytes, p)
}

// UserInfo carries contact details supplied at booking time. Stored as JSONB.
type UserInfo map[string]string

func (u UserInfo) Value() (driver.Value, error) {
	if u == nil {
		return json.Marshal(UserInfo{})
	}
	return json.Marshal(u)
}

func (u *UserInfo) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for UserInfo")
	}
	return json.Unmarshal(bytes, u)
}

// Metadata is the mutable key/value extension bag on a booking.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(Metadata{})
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for Metadata")
	}
	return json.Unmarshal(bytes, m)
}

// ============================================================================
// BOOKING
// ============================================================================

// Booking is the authoritative reservation record. It is never physically
// deleted; cancellation and expiry are state transitions that preserve audit
// history.
type Booking struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	UserID         uuid.UUID      `db:"user_id" json:"userId"`
	SupplierID     uuid.UUID      `db:"supplier_id" json:"supplierId"`
	ProductID      uuid.UUID      `db:"product_id" json:"productId"`
	Date           string         `db:"date" json:"date"`
	StartTime      string         `db:"start_time" json:"startTime"`
	PassengerMix   PassengerMix   `db:"passenger_mix" json:"passengerMix"`
	PassengerCount int            `db:"passenger_count" json:"passengerCount"`
	Extras         Extras         `db:"extras" json:"extras,omitempty"`
	Total          float64        `db:"total" json:"total"`
	Currency       string         `db:"currency" json:"currency"`
	Status         BookingStatus  `db:"status" json:"status"`
	PolicySnapshot PolicySnapshot `db:"policy_snapshot" json:"policySnapshot"`
	UserInfo       UserInfo       `db:"user_info" json:"userInfo"`
	Metadata       Metadata       `db:"metadata" json:"metadata"`
	PaymentRef     *string        `db:"payment_ref" json:"paymentRef,omitempty"`
	RefundAmount   *float64       `db:"refund_amount" json:"refundAmount,omitempty"`
	CancelReason   *string        `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
	ConfirmedAt    *time.Time     `db:"confirmed_at" json:"confirmedAt,omitempty"`
	CancelledAt    *time.Time     `db:"cancelled_at" json:"cancelledAt,omitempty"`
	ExpiresAt      time.Time      `db:"expires_at" json:"expiresAt"`
}

// IsReservable reports whether the booking still holds inventory.
func (b *Booking) IsReservable() bool {
	return b.Status == BookingStatusPending ||
		b.Status == BookingStatusAwaitingPayment ||
		b.Status == BookingStatusConfirmed
}

// HoldExpired reports whether an unconfirmed booking is past its hold window.
func (b *Booking) HoldExpired(now time.Time) bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusAwaitingPayment {
		return false
	}
	return now.After(b.ExpiresAt)
}

// ============================================================================
// REQUEST / RESPONSE TYPES
// ============================================================================

// CreateBookingRequest is the payload for POST /api/v1/bookings. Either a
// quoteId or the raw (productId, date, passengerMix) parameters must be
// supplied.
type CreateBookingRequest struct {
	QuoteID      *uuid.UUID   `json:"quoteId,omitempty"`
	ProductID    *uuid.UUID   `json:"productId,omitempty"`
	Date         string       `json:"date,omitempty"`
	StartTime    string       `json:"startTime,omitempty"`
	PassengerMix PassengerMix `json:"passengerMix,omitempty"`
	Extras       Extras       `json:"extras,omitempty"`
	Currency     string       `json:"currency,omitempty"`
	PaymentMode  PaymentMode  `json:"paymentMode"`
	UserInfo     UserInfo     `json:"userInfo,omitempty"`
	Metadata     Metadata     `json:"metadata,omitempty"`
}

// Validate checks the request before any side effect.
func (r *CreateBookingRequest) Validate() error {
	if r.PaymentMode == "" {
		r.PaymentMode = PaymentModePayLater
	}
	if r.PaymentMode != PaymentModePayNow && r.PaymentMode != PaymentModePayLater {
		return fmt.Errorf("paymentMode must be %q or %q", PaymentModePayNow, PaymentModePayLater)
	}
	if r.QuoteID != nil {
		return nil
	}
	if r.ProductID == nil || *r.ProductID == uuid.Nil {
		return fmt.Errorf("either quoteId or productId is required")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", r.Date)
	}
	if err := r.PassengerMix.Validate(); err != nil {
		return err
	}
	if err := r.Extras.Validate(); err != nil {
		return err
	}
	r.StartTime = NormalizeStartTime(r.StartTime)
	return nil
}

// CreateBookingResponse is returned on successful booking creation.
type CreateBookingResponse struct {
	BookingID uuid.UUID     `json:"bookingId"`
	Status    BookingStatus `json:"status"`
	Total     float64       `json:"total"`
	Currency  string        `json:"currency"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// ConfirmBookingRequest is the payload for confirm. The payment reference is
// handed over from the payment collaborator; its authenticity is not
// re-validated here.
type ConfirmBookingRequest struct {
	PaymentRef string `json:"paymentRef"`
}

// Validate rejects empty payment references.
func (r *ConfirmBookingRequest) Validate() error {
	if r.PaymentRef == "" {
		return fmt.Errorf("paymentRef is required")
	}
	return nil
}

// CancelBookingRequest is the payload for cancel.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBookingResponse reports the refund computed from the policy snapshot.
type CancelBookingResponse struct {
	Status       BookingStatus `json:"status"`
	RefundAmount float64       `json:"refundAmount"`
	Currency     string        `json:"currency"`
}
