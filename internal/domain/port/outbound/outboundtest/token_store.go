// Package outboundtest holds behaviour suites shared by outbound adapters.
package outboundtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

// RunTokenStoreContract checks the behaviour every TokenStore must share.
func RunTokenStoreContract(t *testing.T, store outbound.TokenStore) {
	t.Helper()
	ctx := context.Background()

	token := model.OAuthToken{
		UserID:       "contract-user",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Scope:        "identify",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})

	t.Run("load missing", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-user")
		assert.ErrorIs(t, err, outbound.ErrTokenNotFound)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, token))
		got, err := store.Load(ctx, token.UserID)
		require.NoError(t, err)
		assert.Equal(t, token.AccessToken, got.AccessToken)
		assert.Equal(t, token.RefreshToken, got.RefreshToken)
		assert.True(t, token.ExpiresAt.Equal(got.ExpiresAt))
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("save overwrites", func(t *testing.T) {
		rotated := token
		rotated.AccessToken = "access-2"
		require.NoError(t, store.Save(ctx, rotated))
		got, err := store.Load(ctx, token.UserID)
		require.NoError(t, err)
		assert.Equal(t, "access-2", got.AccessToken)
	})

	t.Run("empty user id", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, model.OAuthToken{AccessToken: "x"}))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, token.UserID))
		_, err := store.Load(ctx, token.UserID)
		assert.ErrorIs(t, err, outbound.ErrTokenNotFound)
		assert.ErrorIs(t, store.Delete(ctx, token.UserID), outbound.ErrTokenNotFound)
	})
}
