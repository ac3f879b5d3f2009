package models

import "errors"

// Sentinel errors for the reservation and booking engine. Repositories
// translate storage-level conditions (sql.ErrNoRows, guarded updates that
// affect zero rows) into these, and handlers map them onto HTTP statuses.
var (
	// ErrNoAvailability means no slot exists for the requested product/date,
	// or its remaining count is zero. Advisory only, nothing was mutated.
	ErrNoAvailability = errors.New("no availability for the requested product and date")

	// ErrInsufficientInventory means the atomic reserve found fewer remaining
	// units than requested. Nothing was mutated.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrSlotNotFound means release/reserve targeted a slot that does not exist.
	ErrSlotNotFound = errors.New("inventory slot not found")

	// ErrOverRelease means a release would push remaining above capacity.
	// This is a logic error (double release) and must be surfaced, not clamped.
	ErrOverRelease = errors.New("inventory release exceeds slot capacity")

	ErrQuoteNotFound = errors.New("quote not found")
	ErrQuoteExpired  = errors.New("quote has expired")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidStateForConfirm means the booking is not in a confirmable
	// state (already confirmed, cancelled, expired, or past its hold window).
	ErrInvalidStateForConfirm = errors.New("booking is not in a confirmable state")

	// ErrAlreadyCancelled means a cancel hit a booking that is already cancelled.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrNotCancellable means a cancel hit a booking in a terminal state other
	// than cancelled (expired or completed).
	ErrNotCancellable = errors.New("booking is not in a cancellable state")

	ErrProductNotFound = errors.New("product not found")
)
