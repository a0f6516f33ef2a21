package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReplayGuard(t *testing.T) {
	ctx := context.Background()
	guard := NewInMemoryReplayGuard()
	now := time.Now()
	guard.now = func() time.Time { return now }

	ok, err := guard.Claim(ctx, "jti-1", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Claim(ctx, "jti-1", 2*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim is a replay")

	ok, err = guard.Claim(ctx, "jti-2", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("short ttl still covers the minimum window", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		ok, err := guard.Claim(ctx, "jti-2", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired ids are forgotten", func(t *testing.T) {
		now = now.Add(3 * time.Minute)
		ok, err := guard.Claim(ctx, "jti-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotContains(t, guard.claimed, "jti-2")
	})
}
