package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/interactbot/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
	"github.com/jonny/interactbot/internal/domain/port/outbound/outboundtest"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              ":memory:",
		MaxOpenConns:      1,
		PragmaJournalMode: "WAL",
		PragmaBusyTimeout: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func makeToken(userID string) model.OAuthToken {
	return model.OAuthToken{
		UserID:       userID,
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		TokenType:    "Bearer",
		Scope:        "identify",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewStore_InvalidJournalMode(t *testing.T) {
	_, err := sqlite.NewStore(sqlite.Config{Path: ":memory:", PragmaJournalMode: "bogus"})
	require.Error(t, err)
}

func TestTokenRepo_SaveAndLoad(t *testing.T) {
	repo := sqlite.NewTokenRepo(newTestStore(t))
	ctx := context.Background()

	want := makeToken("u1")
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.Equal(t, want.Scope, got.Scope)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt), "expires_at %v != %v", got.ExpiresAt, want.ExpiresAt)
}

func TestTokenRepo_SaveOverwrites(t *testing.T) {
	repo := sqlite.NewTokenRepo(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, makeToken("u1")))
	updated := makeToken("u1")
	updated.AccessToken = "rotated"
	require.NoError(t, repo.Save(ctx, updated))

	got, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.AccessToken)
}

func TestTokenRepo_NoExpiry(t *testing.T) {
	repo := sqlite.NewTokenRepo(newTestStore(t))
	ctx := context.Background()

	tok := makeToken("u2")
	tok.ExpiresAt = time.Time{}
	require.NoError(t, repo.Save(ctx, tok))

	got, err := repo.Load(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.IsZero())
}

func TestTokenRepo_LoadMissing(t *testing.T) {
	repo := sqlite.NewTokenRepo(newTestStore(t))
	_, err := repo.Load(context.Background(), "nobody")
	assert.True(t, errors.Is(err, outbound.ErrTokenNotFound))
}

func TestTokenRepo_Delete(t *testing.T) {
	repo := sqlite.NewTokenRepo(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, makeToken("u1")))
	require.NoError(t, repo.Delete(ctx, "u1"))

	_, err := repo.Load(ctx, "u1")
	assert.ErrorIs(t, err, outbound.ErrTokenNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u1"), outbound.ErrTokenNotFound)
}

func TestTokenRepo_Ping(t *testing.T) {
	repo := sqlite.NewTokenRepo(newTestStore(t))
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestTokenRepo_Contract(t *testing.T) {
	outboundtest.RunTokenStoreContract(t, sqlite.NewTokenRepo(newTestStore(t)))
}
