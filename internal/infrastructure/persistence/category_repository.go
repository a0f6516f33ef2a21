package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindAll returns every category ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, shared.WrapStorage("find categories", err)
	}

	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// FindAllWithProductCounts returns every category with its untraded product count.
// Categories without products are included with a zero count.
func (r *GormCategoryRepository) FindAllWithProductCounts(ctx context.Context) ([]catalog.CategoryWithCount, error) {
	var rows []models.CategoryCountRow
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id, categories.name, categories.type, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.is_traded = ?", false).
		Group("categories.id, categories.name, categories.type").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, shared.WrapStorage("count products per category", err)
	}

	result := make([]catalog.CategoryWithCount, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapStorage("find category", err)
	}
	return model.ToDomain(), nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
