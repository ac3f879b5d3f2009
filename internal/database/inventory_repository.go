package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// InventoryRepository is the inventory ledger. It owns per-product,
// per-date(+time) capacity records and exposes the atomic reserve/release
// operations every booking goes through.
//
// The serialization point is the database row: reserve and release are single
// guarded UPDATE statements, so the check-and-modify is one indivisible step
// even across concurrent server instances.
type InventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Reserve atomically decrements remaining for the slot identified by
// (productID, date, startTime). Returns ErrInsufficientInventory when the
// guarded update loses to concurrent reservations, ErrSlotNotFound when no
// slot exists. remaining can never be observed below zero.
func (r *InventoryRepository) Reserve(productID uuid.UUID, date, startTime string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	query := `
		UPDATE inventory_slots
		SET remaining = remaining - $4, updated_at = NOW()
		WHERE product_id = $1 AND date = $2 AND start_time = $3
		  AND remaining >= $4`

	result, err := r.db.Exec(query, productID, date, startTime, quantity)
	if err != nil {
		return fmt.Errorf("failed to reserve inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read reserve result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Guarded update matched nothing: either the slot is missing or the
	// remaining count was too low. Re-read to tell the two apart.
	exists, err := r.slotExists(productID, date, startTime)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrSlotNotFound
	}
	return models.ErrInsufficientInventory
}

// Release atomically adds quantity back to remaining, guarded so remaining
// never exceeds capacity. An attempted over-release is a logic error
// (ErrOverRelease), not a silent clamp.
func (r *InventoryRepository) Release(productID uuid.UUID, date, startTime string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	query := `
		UPDATE inventory_slots
		SET remaining = remaining + $4, updated_at = NOW()
		WHERE product_id = $1 AND date = $2 AND start_time = $3
		  AND remaining + $4 <= capacity`

	result, err := r.db.Exec(query, productID, date, startTime, quantity)
	if err != nil {
		return fmt.Errorf("failed to release inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read release result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	exists, err := r.slotExists(productID, date, startTime)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrSlotNotFound
	}
	return models.ErrOverRelease
}

func (r *InventoryRepository) slotExists(productID uuid.UUID, date, startTime string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_slots
			WHERE product_id = $1 AND date = $2 AND start_time = $3
		)`
	if err := r.db.Get(&exists, query, productID, date, startTime); err != nil {
		return false, fmt.Errorf("failed to check slot existence: %w", err)
	}
	return exists, nil
}

// GetSlot returns the slot for (productID, date, startTime), or nil when none
// exists.
func (r *InventoryRepository) GetSlot(productID uuid.UUID, date, startTime string) (*models.InventorySlot, error) {
	var slot models.InventorySlot
	query := `
		SELECT id, product_id, date, start_time, capacity, remaining,
		       base_price, currency, created_at, updated_at
		FROM inventory_slots
		WHERE product_id = $1 AND date = $2 AND start_time = $3`

	err := r.db.Get(&slot, query, productID, date, startTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory slot: %w", err)
	}
	return &slot, nil
}

// GetAvailability returns all slots with remaining capacity for a product in
// the [from, to] date range, ordered by date and start time.
func (r *InventoryRepository) GetAvailability(productID uuid.UUID, from, to string) ([]models.InventorySlot, error) {
	query := `
		SELECT id, product_id, date, start_time, capacity, remaining,
		       base_price, currency, created_at, updated_at
		FROM inventory_slots
		WHERE product_id = $1 AND date >= $2 AND date <= $3 AND remaining > 0
		ORDER BY date, start_time`

	var slots []models.InventorySlot
	if err := r.db.Select(&slots, query, productID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return slots, nil
}

// UpsertSlots applies supplier inventory edits. Capacity changes adjust
// remaining by the delta rather than overwriting it, so outstanding
// reservations stay accounted for.
func (r *InventoryRepository) UpsertSlots(productID uuid.UUID, updates []models.SlotUpdate) error {
	query := `
		INSERT INTO inventory_slots
			(id, product_id, date, start_time, capacity, remaining, base_price, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (product_id, date, start_time)
		DO UPDATE SET
			remaining = inventory_slots.remaining + ($5 - inventory_slots.capacity),
			capacity = $5,
			base_price = $6,
			currency = $7,
			updated_at = NOW()`

	for i, u := range updates {
		_, err := r.db.Exec(query, uuid.New(), productID, u.Date, u.StartTime, u.Capacity, u.BasePrice, u.Currency)
		if err != nil {
			return fmt.Errorf("failed to upsert slot %d (%s %s): %w", i, u.Date, u.StartTime, err)
		}
	}
	return nil
}
