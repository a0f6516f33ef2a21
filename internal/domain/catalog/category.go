package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// CategoryType tags what kind of goods a category holds
type CategoryType string

const (
	CategoryTypePhysical CategoryType = "physical"
	CategoryTypeDigital  CategoryType = "digital"
)

// Category groups products for browsing. Categories are seeded outside the
// chat flows and are read-only here.
type Category struct {
	ID   uuid.UUID
	Name string
	Type CategoryType
}

// CategoryWithCount pairs a category with the number of untraded products in it
type CategoryWithCount struct {
	Category
	ProductCount int64
}

// NewCategory creates a category with a generated ID
func NewCategory(name string, categoryType CategoryType) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	switch categoryType {
	case CategoryTypePhysical, CategoryTypeDigital:
	default:
		return nil, shared.NewDomainError("INVALID_TYPE", "Category type must be physical or digital")
	}
	return &Category{
		ID:   uuid.New(),
		Name: name,
		Type: categoryType,
	}, nil
}
