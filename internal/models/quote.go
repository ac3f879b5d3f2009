package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PassengerTypeChild is the only passenger type with a discounted rate.
const PassengerTypeChild = "child"

// ChildRate is the multiplier applied to the base price for child passengers.
const ChildRate = 0.7

// PassengerCount is one entry of a passenger mix, e.g. {adult, 2}.
type PassengerCount struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// PassengerMix is the ordered list of passenger-type/quantity pairs priced
// against a slot's base price. Stored as JSONB.
type PassengerMix []PassengerCount

// TotalPassengers returns the total quantity across all mix entries. This is
// the number of inventory units a booking reserves.
func (m PassengerMix) TotalPassengers() int {
	total := 0
	for _, p := range m {
		total += p.Quantity
	}
	return total
}

// Validate rejects empty or malformed mixes before any side effect.
func (m PassengerMix) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("passengerMix is required")
	}
	for i, p := range m {
		if p.Type == "" {
			return fmt.Errorf("passengerMix[%d]: type is required", i)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("passengerMix[%d]: quantity must be > 0", i)
		}
	}
	return nil
}

func (m PassengerMix) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *PassengerMix) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for PassengerMix")
	}
	return json.Unmarshal(bytes, m)
}

// Extra is an additive line item with no discount applied.
type Extra struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Extras is the ordered list of optional extras. Stored as JSONB.
type Extras []Extra

// Validate rejects malformed extras.
func (e Extras) Validate() error {
	for i, x := range e {
		if x.Name == "" {
			return fmt.Errorf("extras[%d]: name is required", i)
		}
		if x.UnitPrice < 0 {
			return fmt.Errorf("extras[%d]: unitPrice must be >= 0", i)
		}
		if x.Quantity <= 0 {
			return fmt.Errorf("extras[%d]: quantity must be > 0", i)
		}
	}
	return nil
}

func (e Extras) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *Extras) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for Extras")
	}
	return json.Unmarshal(bytes, e)
}

// LineItem is one entry of a price breakdown.
type LineItem struct {
	Label     string  `json:"label"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Breakdown is the ordered list of price line items. Stored as JSONB.
type Breakdown []LineItem

func (b Breakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed for Breakdown")
	}
	return json.Unmarshal(bytes, b)
}

// Quote is an immutable, time-boxed price commitment. A quote does NOT
// reserve inventory; availability is re-validated at booking time.
type Quote struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	ProductID    uuid.UUID    `db:"product_id" json:"productId"`
	Date         string       `db:"date" json:"date"`
	StartTime    string       `db:"start_time" json:"startTime"`
	PassengerMix PassengerMix `db:"passenger_mix" json:"passengerMix"`
	Extras       Extras       `db:"extras" json:"extras,omitempty"`
	Breakdown    Breakdown    `db:"breakdown" json:"breakdown"`
	Total        float64      `db:"total" json:"total"`
	Currency     string       `db:"currency" json:"currency"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	ValidUntil   time.Time    `db:"valid_until" json:"validUntil"`
}

// IsExpired reports whether the quote is past its validity window at now.
func (q *Quote) IsExpired(now time.Time) bool {
	return !now.Before(q.ValidUntil)
}

// CreateQuoteRequest is the payload for POST /api/v1/quotes.
type CreateQuoteRequest struct {
	ProductID    uuid.UUID    `json:"productId"`
	Date         string       `json:"date"`
	StartTime    string       `json:"startTime"`
	PassengerMix PassengerMix `json:"passengerMix"`
	Extras       Extras       `json:"extras"`
	Currency     string       `json:"currency"`
}

// Validate checks the request before touching the inventory ledger.
func (r *CreateQuoteRequest) Validate() error {
	if r.ProductID == uuid.Nil {
		return fmt.Errorf("productId is required")
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
