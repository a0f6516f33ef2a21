package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/infrastructure/config"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestService() *WebhookTokenService {
	return NewWebhookTokenService(config.WebhookConfig{
		Secret:    testSecret,
		Issuer:    "test-gateway",
		TokenTTL:  5 * time.Minute,
		ClockSkew: 10 * time.Second,
	})
}

func TestWebhookTokenService_RoundTrip(t *testing.T) {
	svc := newTestService()

	token, expiresAt, err := svc.IssueToken("telegram")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "telegram", claims.Gateway)
	assert.Equal(t, "test-gateway", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, (5 * time.Minute).Seconds(), claims.ExpiresIn().Seconds(), 2)
}

func TestWebhookTokenService_IssueNeedsGateway(t *testing.T) {
	_, _, err := newTestService().IssueToken("")
	assert.ErrorIs(t, err, ErrMissingGateway)
}

func TestWebhookTokenService_Validate(t *testing.T) {
	svc := newTestService()

	t.Run("expired beyond skew", func(t *testing.T) {
		past := newTestService()
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.IssueToken("telegram")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("issued slightly in the future is accepted", func(t *testing.T) {
		ahead := newTestService()
		ahead.now = func() time.Time { return time.Now().Add(5 * time.Second) }
		token, _, err := ahead.IssueToken("telegram")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.NoError(t, err)
	})

	t.Run("not yet valid", func(t *testing.T) {
		ahead := newTestService()
		ahead.now = func() time.Time { return time.Now().Add(time.Minute) }
		token, _, err := ahead.IssueToken("telegram")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewWebhookTokenService(config.WebhookConfig{
			Secret:   "another-secret-key-at-least-32-chars",
			Issuer:   "test-gateway",
			TokenTTL: time.Minute,
		})
		token, _, err := other.IssueToken("telegram")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewWebhookTokenService(config.WebhookConfig{
			Secret:   testSecret,
			Issuer:   "someone-else",
			TokenTTL: time.Minute,
		})
		token, _, err := other.IssueToken("telegram")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-gateway"},
			Gateway:          "telegram",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing gateway claim", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-gateway",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrMissingGateway)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-gateway",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			Gateway: "telegram",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
