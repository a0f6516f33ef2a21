package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures gorm span instrumentation
type DBTracingConfig struct {
	Enabled            bool
	IncludeVariables   bool          // put bound query values on spans; dev only
	SlowQueryThreshold time.Duration // 200ms when zero
	DBName             string
}

type queryStartKey struct{}

type gormRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// gormHook positions a callback before or after one gorm operation
type gormHook struct {
	before func(string) gormRegistrar
	after  func(string) gormRegistrar
}

// RegisterDBTracing installs the otelgorm plugin on db plus callbacks that tag
// spans with table and row count and flag slow statements.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{}
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	ops := map[string]gormHook{
		"create": {
			before: func(n string) gormRegistrar { return cb.Create().Before(n) },
			after:  func(n string) gormRegistrar { return cb.Create().After(n) },
		},
		"query": {
			before: func(n string) gormRegistrar { return cb.Query().Before(n) },
			after:  func(n string) gormRegistrar { return cb.Query().After(n) },
		},
		"update": {
			before: func(n string) gormRegistrar { return cb.Update().Before(n) },
			after:  func(n string) gormRegistrar { return cb.Update().After(n) },
		},
		"delete": {
			before: func(n string) gormRegistrar { return cb.Delete().Before(n) },
			after:  func(n string) gormRegistrar { return cb.Delete().After(n) },
		},
		"row": {
			before: func(n string) gormRegistrar { return cb.Row().Before(n) },
			after:  func(n string) gormRegistrar { return cb.Row().After(n) },
		},
		"raw": {
			before: func(n string) gormRegistrar { return cb.Raw().Before(n) },
			after:  func(n string) gormRegistrar { return cb.Raw().After(n) },
		},
	}

	after := slowQueryCallback(cfg.SlowQueryThreshold)
	for op, h := range ops {
		if err := h.before("gorm:"+op).Register("tradepost:timing_"+op, markQueryStart); err != nil {
			return err
		}
		if err := h.after("gorm:"+op).Register("tradepost:span_"+op, after); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold))
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func slowQueryCallback(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}

		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
