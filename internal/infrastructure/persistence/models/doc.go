// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table with timestamps
// - catalog.go: categories and products
// - identity.go: users keyed by external id
// - trade.go: settled trades
package models
