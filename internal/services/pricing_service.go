package services

import (
	"math"

	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// PriceResult is the output of a pricing computation.
type PriceResult struct {
	Total     float64
	Breakdown models.Breakdown
}

// PricingService computes price breakdowns from a passenger composition and
// optional extras given a slot's base price. It is a pure function: no side
// effects, deterministic, same inputs produce the same output.
type PricingService struct{}

// NewPricingService creates a new PricingService
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Price computes the total and ordered breakdown. Children pay 0.7 of the
// base price; every other passenger type pays full price. Extras are
// additive line items with no discount.
func (s *PricingService) Price(basePrice float64, mix models.PassengerMix, extras models.Extras) PriceResult {
	breakdown := make(models.Breakdown, 0, len(mix)+len(extras))
	total := 0.0

	for _, p := range mix {
		unit := basePrice
		if p.Type == models.PassengerTypeChild {
			unit = roundMoney(basePrice * models.ChildRate)
		}
		subtotal := roundMoney(unit * float64(p.Quantity))
		breakdown = append(breakdown, models.LineItem{
			Label:     p.Type,
			UnitPrice: unit,
			Quantity:  p.Quantity,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	for _, x := range extras {
		subtotal := roundMoney(x.UnitPrice * float64(x.Quantity))
		breakdown = append(breakdown, models.LineItem{
			Label:     x.Name,
			UnitPrice: x.UnitPrice,
			Quantity:  x.Quantity,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	return PriceResult{Total: roundMoney(total), Breakdown: breakdown}
}

// roundMoney rounds to two decimal places.
func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
