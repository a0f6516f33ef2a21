package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSenderLimiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("burst then refill per sender", func(t *testing.T) {
		l := NewSenderLimiter(1, 2, time.Minute)
		defer l.Close()
		now := time.Now()
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"), "burst exhausted")
		assert.True(t, l.Allow("b"), "other senders have their own bucket")

		now = now.Add(time.Second)
		assert.True(t, l.Allow("a"), "one token refilled")
	})

	t.Run("disabled when rate is zero", func(t *testing.T) {
		l := NewSenderLimiter(0, 1, time.Minute)
		defer l.Close()

		for range 100 {
			require.True(t, l.Allow("a"))
		}
		assert.Equal(t, 0, l.Len())
	})

	t.Run("sweep drops idle senders", func(t *testing.T) {
		l := NewSenderLimiter(1, 1, time.Minute)
		defer l.Close()
		now := time.Now()
		l.now = func() time.Time { return now }

		l.Allow("a")
		now = now.Add(30 * time.Second)
		l.Allow("b")
		now = now.Add(45 * time.Second)
		l.sweep()

		assert.Equal(t, 1, l.Len())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		l := NewSenderLimiter(1, 1, time.Minute)
		require.NoError(t, l.Close())
		require.NoError(t, l.Close())
	})
}
