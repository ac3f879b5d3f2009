package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

// ProductRepository is the read-only boundary to the catalog collaborator.
// The booking engine only needs the owning supplier and the policy document
// to snapshot at booking time.
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetForBooking returns the published product's supplier and policies, or
// nil when the product does not exist or is not published.
func (r *ProductRepository) GetForBooking(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	query := `
		SELECT id, supplier_id, title, status, policies
		FROM products
		WHERE id = $1 AND status = 'published'`

	err := r.db.Get(&product, query, productID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// GetOwner returns the product's supplier id regardless of publication
// status, or uuid.Nil when the product does not exist. Suppliers manage
// inventory on unpublished products too.
func (r *ProductRepository) GetOwner(productID uuid.UUID) (uuid.UUID, error) {
	var supplierID uuid.UUID
	query := `SELECT supplier_id FROM products WHERE id = $1`

	err := r.db.Get(&supplierID, query, productID)
	if err == sql.ErrNoRows {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get product owner: %w", err)
	}
	return supplierID, nil
}
