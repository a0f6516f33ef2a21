package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard remembers token ids until they expire
type ReplayGuard interface {
	// Claim records jti for ttl. It returns false when jti was already claimed.
	Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// minClaimTTL keeps ids around even for tokens about to expire, so the clock
// skew window cannot be used to replay them.
const minClaimTTL = time.Minute

// RedisReplayGuard shares claimed ids between server replicas
type RedisReplayGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReplayGuard uses an existing client, typically the session store's
func NewRedisReplayGuard(client *redis.Client, keyPrefix string) *RedisReplayGuard {
	if keyPrefix == "" {
		keyPrefix = "tradepost:webhook:jti:"
	}
	return &RedisReplayGuard{client: client, keyPrefix: keyPrefix}
}

// Claim implements ReplayGuard with SET NX
func (g *RedisReplayGuard) Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+jti, "1", max(ttl, minClaimTTL)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim token id: %w", err)
	}
	return ok, nil
}

// InMemoryReplayGuard is a single-process ReplayGuard
type InMemoryReplayGuard struct {
	mu      sync.Mutex
	claimed map[string]time.Time
	now     func() time.Time
}

// NewInMemoryReplayGuard creates an empty guard
func NewInMemoryReplayGuard() *InMemoryReplayGuard {
	return &InMemoryReplayGuard{
		claimed: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Claim implements ReplayGuard. Expired ids are swept on each call.
func (g *InMemoryReplayGuard) Claim(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, until := range g.claimed {
		if now.After(until) {
			delete(g.claimed, id)
		}
	}

	if _, seen := g.claimed[jti]; seen {
		return false, nil
	}
	g.claimed[jti] = now.Add(max(ttl, minClaimTTL))
	return true, nil
}

var (
	_ ReplayGuard = (*RedisReplayGuard)(nil)
	_ ReplayGuard = (*InMemoryReplayGuard)(nil)
)
