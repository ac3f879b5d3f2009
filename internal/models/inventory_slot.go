package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical travel-date format used across the API and the
// inventory ledger key (product_id, date, start_time).
const DateLayout = "2006-01-02"

// DefaultStartTime is used when a slot has no explicit start time.
const DefaultStartTime = "00:00:00"

// InventorySlot represents bookable capacity for one product on one date
// (and optional start time).
type InventorySlot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProductID uuid.UUID `db:"product_id" json:"productId"`
	Date      string    `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"startTime"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Remaining int       `db:"remaining" json:"remaining"`
	BasePrice float64   `db:"base_price" json:"basePrice"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SlotUpdate is one entry of a supplier inventory upsert. Capacity changes
// apply to remaining as a delta so outstanding reservations survive the edit.
type SlotUpdate struct {
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	Capacity  int     `json:"capacity"`
	BasePrice float64 `json:"basePrice"`
	Currency  string  `json:"currency"`
}

// UpdateInventoryRequest is the supplier-side inventory upsert payload.
type UpdateInventoryRequest struct {
	Updates []SlotUpdate `json:"updates"`
}

// Validate checks the upsert payload before any write happens.
func (r *UpdateInventoryRequest) Validate() error {
	if len(r.Updates) == 0 {
		return fmt.Errorf("updates array is required")
	}
	for i := range r.Updates {
		u := &r.Updates[i]
		if _, err := time.Parse(DateLayout, u.Date); err != nil {
			return fmt.Errorf("updates[%d]: invalid date %q, expected YYYY-MM-DD", i, u.Date)
		}
		if u.Capacity < 0 {
			return fmt.Errorf("updates[%d]: capacity must be >= 0", i)
		}
		if u.BasePrice < 0 {
			return fmt.Errorf("updates[%d]: basePrice must be >= 0", i)
		}
		if u.StartTime == "" {
			u.StartTime = DefaultStartTime
		}
		if u.Currency == "" {
			u.Currency = "HKD"
		}
	}
	return nil
}

// NormalizeStartTime maps an empty start time to the slot default.
func NormalizeStartTime(startTime string) string {
	if startTime == "" {
		return DefaultStartTime
	}
	return startTime
}
