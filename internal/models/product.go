package models

import "github.com/google/uuid"

// Product is the read-only projection of the catalog collaborator consumed
// at booking time: the owning supplier and the policy document that gets
// snapshotted onto the booking.
type Product struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	SupplierID uuid.UUID      `db:"supplier_id" json:"supplierId"`
	Title      string         `db:"title" json:"title"`
	Status     string         `db:"status" json:"status"`
	Policies   PolicySnapshot `db:"policies" json:"policies"`
}
