package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductFilter scopes product listings. Traded products are always excluded.
// Exactly one of CategoryID and OwnerExternalID is expected to be set.
type ProductFilter struct {
	CategoryID      *uuid.UUID
	OwnerExternalID string
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// FindByID finds a product by its ID, with its category joined
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindPage returns untraded products matching the filter in listing order
	// (oldest first), with their categories joined
	FindPage(ctx context.Context, filter ProductFilter, offset, limit int) ([]Product, error)

	// Count counts untraded products matching the filter
	Count(ctx context.Context, filter ProductFilter) (int64, error)
}
