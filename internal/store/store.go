// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/abgdnv/catalog/internal/store/db"
)

// ProductStore is an interface for product storage operations.
// Soft-deleted products are invisible to every method.
type ProductStore interface {
	// FindByID retrieves a single active product by its unique identifier.
	// Returns ErrProductNotFound if no active product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*db.Product, error)

	// FindAll returns all active products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]db.Product, error)

	// ExistsByCode reports whether an active product other than excludeID holds code.
	// A nil excludeID checks all active products.
	ExistsByCode(ctx context.Context, code string, excludeID *int64) (bool, error)

	// Save inserts p when p.ID is zero and updates the active product with p.ID otherwise.
	// Returns ErrConflict if another active product holds the same code and
	// ErrProductNotFound if the product to update does not exist.
	Save(ctx context.Context, p *db.Product) (*db.Product, error)

	// SoftDelete marks the active product with the given ID as deleted.
	// Returns ErrProductNotFound if nothing was marked.
	SoftDelete(ctx context.Context, id int64) error
}
