package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/tradepost/backend/internal/domain/identity"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Upsert inserts the user if absent, then refreshes the handle when a non-empty
// one is given. Concurrent callers race on the handle and the last writer wins;
// an empty handle never overwrites a stored one.
func (r *GormUserRepository) Upsert(ctx context.Context, externalID, handle string) (*identity.User, error) {
	fresh, err := identity.NewUser(externalID, handle)
	if err != nil {
		return nil, err
	}

	var stored models.UserModel
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := &models.UserModel{}
		insert.FromDomain(fresh)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).Create(insert).Error; err != nil {
			return err
		}

		if handle != "" {
			if err := tx.Model(&models.UserModel{}).
				Where("external_id = ?", externalID).
				Where("(handle IS NULL OR handle <> ?)", handle).
				Updates(map[string]any{
					"handle":     handle,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		return tx.Where("external_id = ?", externalID).First(&stored).Error
	})
	if err != nil {
		return nil, shared.WrapStorage("upsert user", err)
	}
	return stored.ToDomain(), nil
}

// FindByExternalID finds a user by external id
func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapStorage("find user", err)
	}
	return model.ToDomain(), nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
