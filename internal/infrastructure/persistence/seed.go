package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedReport summarizes what Seed wrote
type SeedReport struct {
	Skipped    bool
	Categories int
	Users      int
	Products   int
	Trades     int
}

type seedCategory struct {
	name string
	kind catalog.CategoryType
}

type seedListing struct {
	title    string
	wanted   string
	category string
}

var (
	seedCategories = []seedCategory{
		{"Electronics", catalog.CategoryTypePhysical},
		{"Books", catalog.CategoryTypePhysical},
		{"Clothing", catalog.CategoryTypePhysical},
		{"Services", catalog.CategoryTypeDigital},
		{"Gaming", catalog.CategoryTypeDigital},
	}

	seedUsers = [][2]string{
		{"123456789", "john_doe"},
		{"987654321", "jane_smith"},
		{"456789123", "trading_pro"},
		{"789123456", "tech_trader"},
	}

	seedListings = []seedListing{
		{"iPhone 13 Pro", "Looking for MacBook or gaming laptop", "Electronics"},
		{"Programming Books Bundle", "Want fitness equipment or tech gadgets", "Books"},
		{"Nike Air Max (New)", "Looking for other branded shoes or watch", "Clothing"},
	}
)

// seedTradeCount is how many of the first seeded products get their own trade
const seedTradeCount = 3

// Seed loads demo data: five categories, four users with three listings each,
// and the first three listings settled into their own trades. When reset is
// false and products already exist nothing is written. When reset is true all
// existing rows are removed first.
func Seed(ctx context.Context, db *gorm.DB, reset bool) (*SeedReport, error) {
	db = db.WithContext(ctx)

	if reset {
		if err := truncateAll(db); err != nil {
			return nil, err
		}
	} else {
		var existing int64
		if err := db.Model(&models.ProductModel{}).Count(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		if existing > 0 {
			return &SeedReport{Skipped: true}, nil
		}
	}

	report := &SeedReport{}
	categoryIDs, err := seedCategoryRows(db)
	if err != nil {
		return nil, err
	}
	report.Categories = len(categoryIDs)

	users := NewGormUserRepository(db)
	products := NewGormProductRepository(db)
	var created []uuid.UUID
	for _, u := range seedUsers {
		user, err := users.Upsert(ctx, u[0], u[1])
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", u[0], err)
		}
		report.Users++

		for _, l := range seedListings {
			p, err := catalog.NewProduct(l.title, l.wanted, user.ID, categoryIDs[l.category])
			if err != nil {
				return nil, err
			}
			if err := products.Create(ctx, p); err != nil {
				return nil, fmt.Errorf("failed to seed product %q: %w", l.title, err)
			}
			created = append(created, p.ID)
			report.Products++
		}
	}

	settlements := NewGormSettlementRepository(db)
	for _, id := range created[:min(seedTradeCount, len(created))] {
		t, err := trade.NewTrade([]uuid.UUID{id})
		if err != nil {
			return nil, err
		}
		if err := settlements.Settle(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to seed trade: %w", err)
		}
		report.Trades++
	}

	return report, nil
}

func seedCategoryRows(db *gorm.DB) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(seedCategories))
	for _, c := range seedCategories {
		category, err := catalog.NewCategory(c.name, c.kind)
		if err != nil {
			return nil, err
		}
		model := &models.CategoryModel{}
		model.FromDomain(category)
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(model).Error; err != nil {
			return nil, fmt.Errorf("failed to seed category %s: %w", c.name, err)
		}

		var stored models.CategoryModel
		if err := db.Where("name = ?", c.name).First(&stored).Error; err != nil {
			return nil, fmt.Errorf("failed to read category %s: %w", c.name, err)
		}
		ids[c.name] = stored.ID
	}
	return ids, nil
}

// truncateAll deletes every row, children first
func truncateAll(db *gorm.DB) error {
	for _, m := range []any{&models.ProductModel{}, &models.TradeModel{}, &models.CategoryModel{}, &models.UserModel{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", m, err)
		}
	}
	return nil
}
