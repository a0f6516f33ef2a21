package models

import (
	"github.com/tradepost/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	ExternalID string  `gorm:"type:varchar(64);not null;uniqueIndex"`
	Handle     *string `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity: m.BaseModel.ToDomain(),
		ExternalID: m.ExternalID,
		Handle:     m.Handle,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.ExternalID = u.ExternalID
	m.Handle = u.Handle
}
