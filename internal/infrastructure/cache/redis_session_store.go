package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/wizard"
	"github.com/tradepost/backend/internal/infrastructure/config"
)

const defaultSessionKeyPrefix = "tradepost:wizard:"

// RedisSessionStore implements wizard.SessionStore using Redis.
// Sessions are stored as JSON and expire through the key TTL, which lets
// several instances share wizard state.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection
func NewRedisSessionStore(cfg config.RedisConfig, session config.SessionConfig) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSessionStoreWithClient(client, session.KeyPrefix, session.TTL), nil
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis client
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultSessionKeyPrefix
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the session for externalID, or shared.ErrNotFound
func (s *RedisSessionStore) Get(ctx context.Context, externalID string) (*wizard.Session, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+externalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, shared.WrapStorage("load wizard session", err)
	}

	var session wizard.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, shared.WrapStorage("decode wizard session", err)
	}
	return &session, nil
}

// Put stores the session and restarts its TTL
func (s *RedisSessionStore) Put(ctx context.Context, session *wizard.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return shared.WrapStorage("encode wizard session", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+session.ExternalID, data, s.ttl).Err(); err != nil {
		return shared.WrapStorage("save wizard session", err)
	}
	return nil
}

// Delete removes the session for externalID
func (s *RedisSessionStore) Delete(ctx context.Context, externalID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+externalID).Err(); err != nil {
		return shared.WrapStorage("delete wizard session", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying connection for other Redis-backed components
func (s *RedisSessionStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Ensure RedisSessionStore implements SessionStore
var _ wizard.SessionStore = (*RedisSessionStore)(nil)
