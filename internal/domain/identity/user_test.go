package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with handle", func(t *testing.T) {
		user, err := NewUser("123456789", "john_doe")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "123456789", user.ExternalID)
		require.NotNil(t, user.Handle)
		assert.Equal(t, "john_doe", *user.Handle)
	})

	t.Run("stores empty handle as nil", func(t *testing.T) {
		user, err := NewUser("123456789", "")
		require.NoError(t, err)
		assert.Nil(t, user.Handle)
		assert.Equal(t, "", user.HandleOrEmpty())
	})

	t.Run("fails with blank external id", func(t *testing.T) {
		_, err := NewUser("  ", "john_doe")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("fails with oversized external id", func(t *testing.T) {
		_, err := NewUser(strings.Repeat("9", 65), "")
		require.Error(t, err)
	})
}

func TestUser_RefreshHandle(t *testing.T) {
	user, err := NewUser("987654321", "jane")
	require.NoError(t, err)

	t.Run("ignores empty handle", func(t *testing.T) {
		assert.False(t, user.RefreshHandle(""))
		assert.Equal(t, "jane", user.HandleOrEmpty())
	})

	t.Run("ignores unchanged handle", func(t *testing.T) {
		assert.False(t, user.RefreshHandle("jane"))
	})

	t.Run("replaces with new handle", func(t *testing.T) {
		assert.True(t, user.RefreshHandle("jane_smith"))
		assert.Equal(t, "jane_smith", user.HandleOrEmpty())
	})
}

func TestUser_IDOrNil(t *testing.T) {
	var missing *User
	assert.Equal(t, uuid.Nil, missing.IDOrNil())

	user, err := NewUser("1", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, user.IDOrNil())
}
