package cache

import (
	"fmt"
	"io"

	"github.com/tradepost/backend/internal/domain/wizard"
	"github.com/tradepost/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SessionStore is a wizard.SessionStore that holds resources until closed
type SessionStore interface {
	wizard.SessionStore
	io.Closer
}

// SessionStoreFactory creates wizard session stores based on configuration
type SessionStoreFactory struct {
	redisConfig           config.RedisConfig
	sessionConfig         config.SessionConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SessionStoreFactoryOption is a functional option for configuring the factory
type SessionStoreFactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a redis store that cannot connect
// falls back to memory. Default is true.
func WithInMemoryFallback(allow bool) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSessionStoreFactory creates a new factory
func NewSessionStoreFactory(redisCfg config.RedisConfig, sessionCfg config.SessionConfig, opts ...SessionStoreFactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		redisConfig:           redisCfg,
		sessionConfig:         sessionCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the store named by session.store. A redis store that
// cannot connect falls back to memory when allowed.
func (f *SessionStoreFactory) CreateStore() (SessionStore, error) {
	if f.sessionConfig.Store != config.SessionStoreRedis {
		f.logger.Info("using in-memory wizard session store", zap.Duration("ttl", f.sessionConfig.TTL))
		return NewInMemorySessionStore(f.sessionConfig.TTL), nil
	}

	store, err := NewRedisSessionStore(f.redisConfig, f.sessionConfig)
	if err == nil {
		f.logger.Info("using Redis wizard session store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis session store unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory wizard session store. "+
		"Sessions will not be shared between instances.",
		zap.Error(err),
	)
	return NewInMemorySessionStore(f.sessionConfig.TTL), nil
}
