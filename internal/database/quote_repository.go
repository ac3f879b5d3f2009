package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// QuoteRepository persists quotes. Quotes are immutable once written; the
// only mutation is garbage collection of expired rows.
type QuoteRepository struct {
	db DB
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(db DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a new quote.
func (r *QuoteRepository) Create(quote *models.Quote) error {
	query := `
		INSERT INTO quotes
			(id, product_id, date, start_time, passenger_mix, extras, breakdown,
			 total, currency, created_at, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		quote.ID, quote.ProductID, quote.Date, quote.StartTime,
		quote.PassengerMix, quote.Extras, quote.Breakdown,
		quote.Total, quote.Currency, quote.CreatedAt, quote.ValidUntil,
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// GetByID returns a quote by id, or nil when it does not exist (including
// after garbage collection).
func (r *QuoteRepository) GetByID(quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	query := `
		SELECT id, product_id, date, start_time, passenger_mix, extras, breakdown,
		       total, currency, created_at, valid_until
		FROM quotes
		WHERE id = $1`

	err := r.db.Get(&quote, query, quoteID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

// PurgeExpired deletes quotes whose validity window ended before now and
// returns how many rows were removed. Expired quotes are already rejected at
// read time; this keeps the table from growing without bound.
func (r *QuoteRepository) PurgeExpired(now time.Time) (int, error) {
	result, err := r.db.Exec(`DELETE FROM quotes WHERE valid_until < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired quotes: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
