package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestRegisterDBTracing(t *testing.T) {
	t.Run("disabled leaves db untouched", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{}, zaptest.NewLogger(t)))
		assert.Empty(t, db.Plugins)
	})

	t.Run("statements produce child spans", func(t *testing.T) {
		sr := setupTestTracer(t)
		db := openTestDB(t)
		require.NoError(t, db.AutoMigrate(&tracedRow{}))
		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{
			Enabled: true,
			DBName:  "sqlite",
		}, zaptest.NewLogger(t)))

		ctx, parent := telemetry.StartSpan(context.Background(), "test.parent")
		require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "lamp"}).Error)
		var rows []tracedRow
		require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
		parent.End()

		var children int
		for _, s := range sr.Ended() {
			if s.Parent().SpanID() == parent.SpanContext().SpanID() {
				children++
			}
		}
		assert.GreaterOrEqual(t, children, 2)
	})
}
