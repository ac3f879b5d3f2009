package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

func TestPrice(t *testing.T) {
	svc := NewPricingService()

	t.Run("Child Discount", func(t *testing.T) {
		mix := models.PassengerMix{
			{Type: "adult", Quantity: 2},
			{Type: "child", Quantity: 1},
		}

		result := svc.Price(100.0, mix, nil)

		assert.Equal(t, 270.0, result.Total)
		require.Len(t, result.Breakdown, 2)
		assert.Equal(t, "adult", result.Breakdown[0].Label)
		assert.Equal(t, 100.0, result.Breakdown[0].UnitPrice)
		assert.Equal(t, 200.0, result.Breakdown[0].Subtotal)
		assert.Equal(t, "child", result.Breakdown[1].Label)
		assert.Equal(t, 70.0, result.Breakdown[1].UnitPrice)
		assert.Equal(t, 70.0, result.Breakdown[1].Subtotal)
	})

	t.Run("Unknown Types Pay Full Price", func(t *testing.T) {
		mix := models.PassengerMix{
			{Type: "senior", Quantity: 2},
		}

		result := svc.Price(350.0, mix, nil)
		assert.Equal(t, 700.0, result.Total)
	})

	t.Run("Extras Are Additive", func(t *testing.T) {
		mix := models.PassengerMix{
			{Type: "adult", Quantity: 1},
		}
		extras := models.Extras{
			{Name: "lunch", UnitPrice: 80.0, Quantity: 2},
			{Name: "photo package", UnitPrice: 150.0, Quantity: 1},
		}

		result := svc.Price(350.0, mix, extras)

		assert.Equal(t, 660.0, result.Total)
		require.Len(t, result.Breakdown, 3)
		assert.Equal(t, "lunch", result.Breakdown[1].Label)
		assert.Equal(t, 160.0, result.Breakdown[1].Subtotal)
		assert.Equal(t, "photo package", result.Breakdown[2].Label)
		assert.Equal(t, 150.0, result.Breakdown[2].Subtotal)
	})

	t.Run("Deterministic", func(t *testing.T) {
		mix := models.PassengerMix{
			{Type: "adult", Quantity: 3},
			{Type: "child", Quantity: 2},
		}
		extras := models.Extras{
			{Name: "transfer", UnitPrice: 45.5, Quantity: 5},
		}

		first := svc.Price(123.45, mix, extras)
		second := svc.Price(123.45, mix, extras)

		assert.Equal(t, first.Total, second.Total)
		assert.Equal(t, first.Breakdown, second.Breakdown)
	})

	t.Run("Rounds To Cents", func(t *testing.T) {
		mix := models.PassengerMix{
			{Type: "child", Quantity: 3},
		}

		// 33.33 * 0.7 = 23.331 -> 23.33 per child.
		result := svc.Price(33.33, mix, nil)
		assert.Equal(t, 69.99, result.Total)
		assert.Equal(t, 23.33, result.Breakdown[0].UnitPrice)
	})
}
