package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/identity"
	"github.com/tradepost/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with every table migrated.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(name, catalog.CategoryTypePhysical)
	require.NoError(t, err)

	model := &models.CategoryModel{}
	model.FromDomain(category)
	require.NoError(t, db.Create(model).Error)
	return category
}

func seedUser(t *testing.T, db *gorm.DB, externalID string) *identity.User {
	t.Helper()
	user, err := NewGormUserRepository(db).Upsert(context.Background(), externalID, "")
	require.NoError(t, err)
	return user
}

// seedProducts creates n products for the user in the category. Creation times
// are spaced one second apart from base so listing order is deterministic.
func seedProducts(t *testing.T, db *gorm.DB, user *identity.User, category *catalog.Category, n int, base time.Time) []*catalog.Product {
	t.Helper()
	repo := NewGormProductRepository(db)
	products := make([]*catalog.Product, 0, n)
	for i := 0; i < n; i++ {
		p, err := catalog.NewProduct(
			category.Name+" item "+string(rune('A'+i)),
			"anything",
			user.ID,
			category.ID,
		)
		require.NoError(t, err)
		p.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(context.Background(), p))
		products = append(products, p)
	}
	return products
}

func productIDs(products []*catalog.Product) []uuid.UUID {
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
