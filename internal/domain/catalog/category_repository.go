package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindAll returns every category ordered by name
	FindAll(ctx context.Context) ([]Category, error)

	// FindAllWithProductCounts returns every category with its untraded product count
	FindAllWithProductCounts(ctx context.Context) ([]CategoryWithCount, error)

	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
}
