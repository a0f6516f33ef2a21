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

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := &models.ProductModel{}
	model.FromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return shared.NewDomainError(shared.CodeNotFound, "Category or owner not found")
		}
		return shared.WrapStorage("create product", err)
	}
	return nil
}

// FindByID finds a product by its ID, with its category joined
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("Category").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapStorage("find product", err)
	}
	return model.ToDomain(), nil
}

// FindPage returns untraded products matching the filter, oldest first.
// Ties on created_at are broken by id so windows stay stable.
func (r *GormProductRepository) FindPage(ctx context.Context, filter catalog.ProductFilter, offset, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	err := r.scoped(ctx, filter).
		Preload("Category").
		Order("products.created_at ASC").
		Order("products.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, shared.WrapStorage("find products", err)
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Count counts untraded products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return 0, shared.WrapStorage("count products", err)
	}
	return total, nil
}

// scoped builds the shared WHERE clause for listings
func (r *GormProductRepository) scoped(ctx context.Context, filter catalog.ProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("products.is_traded = ?", false)

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.OwnerExternalID != "" {
		query = query.
			Joins("JOIN users ON users.id = products.user_id").
			Where("users.external_id = ?", filter.OwnerExternalID)
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
