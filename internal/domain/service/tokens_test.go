package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
	"github.com/jonny/interactbot/internal/domain/service"
)

// --- fakes ---

type fakeIdentity struct {
	exchanged *oauth2.Token
	refreshed *oauth2.Token
	user      model.User
	err       error
	refreshes int
}

func (f *fakeIdentity) AuthCodeURL(state string) string { return "https://auth.example/?state=" + state }

func (f *fakeIdentity) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.exchanged, nil
}

func (f *fakeIdentity) Refresh(_ context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
	f.refreshes++
	if f.err != nil {
		return nil, f.err
	}
	return f.refreshed, nil
}

func (f *fakeIdentity) CurrentUser(_ context.Context, _ *oauth2.Token) (model.User, error) {
	return f.user, nil
}

var _ outbound.IdentityProvider = (*fakeIdentity)(nil)

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.OAuthToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]model.OAuthToken)}
}

func (s *memTokenStore) Save(_ context.Context, t model.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.UserID] = t
	return nil
}

func (s *memTokenStore) Load(_ context.Context, userID string) (model.OAuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[userID]
	if !ok {
		return model.OAuthToken{}, outbound.ErrTokenNotFound
	}
	return t, nil
}

func (s *memTokenStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

func (s *memTokenStore) Ping(context.Context) error { return nil }

var _ outbound.TokenStore = (*memTokenStore)(nil)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTokens(identity *fakeIdentity, store *memTokenStore, opts ...service.TokensOption) *service.Tokens {
	opts = append(opts, service.WithTokensClock(func() time.Time { return fixedNow }))
	return service.NewTokens(identity, store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func TestTokens_Authorize(t *testing.T) {
	identity := &fakeIdentity{
		exchanged: (&oauth2.Token{
			AccessToken:  "a1",
			RefreshToken: "r1",
			TokenType:    "Bearer",
			Expiry:       fixedNow.Add(time.Hour),
		}).WithExtra(map[string]any{"scope": "identify"}),
		user: model.User{ID: "u1", Username: "alice"},
	}
	store := newMemTokenStore()

	var hooked model.OAuthToken
	tokens := newTokens(identity, store, service.WithAuthorizeHook(func(_ context.Context, u model.User, tok model.OAuthToken) error {
		assert.Equal(t, "u1", u.ID)
		hooked = tok
		return nil
	}))

	user, err := tokens.Authorize(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	stored, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a1", stored.AccessToken)
	assert.Equal(t, "identify", stored.Scope)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
	assert.Equal(t, stored, hooked)
}

func TestTokens_AuthorizeHookError(t *testing.T) {
	identity := &fakeIdentity{exchanged: &oauth2.Token{AccessToken: "a1"}, user: model.User{ID: "u1"}}
	hookErr := errors.New("welcome message failed")
	tokens := newTokens(identity, newMemTokenStore(), service.WithAuthorizeHook(func(context.Context, model.User, model.OAuthToken) error {
		return hookErr
	}))

	_, err := tokens.Authorize(context.Background(), "code")
	assert.ErrorIs(t, err, hookErr)
}

func TestTokens_AuthorizeExchangeError(t *testing.T) {
	exchangeErr := errors.New("invalid_grant")
	tokens := newTokens(&fakeIdentity{err: exchangeErr}, newMemTokenStore())
	_, err := tokens.Authorize(context.Background(), "bad")
	assert.ErrorIs(t, err, exchangeErr)
}

func TestTokens_AccessTokenValid(t *testing.T) {
	store := newMemTokenStore()
	store.Save(context.Background(), model.OAuthToken{UserID: "u1", AccessToken: "a1", ExpiresAt: fixedNow.Add(time.Hour)})
	identity := &fakeIdentity{}

	tok, err := newTokens(identity, store).AccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a1", tok)
	assert.Zero(t, identity.refreshes)
}

func TestTokens_AccessTokenRefreshes(t *testing.T) {
	store := newMemTokenStore()
	store.Save(context.Background(), model.OAuthToken{
		UserID: "u1", AccessToken: "old", RefreshToken: "r1", Scope: "identify",
		ExpiresAt: fixedNow.Add(-time.Minute),
	})
	identity := &fakeIdentity{refreshed: &oauth2.Token{AccessToken: "new", TokenType: "Bearer", Expiry: fixedNow.Add(time.Hour)}}

	tok, err := newTokens(identity, store).AccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
	assert.Equal(t, 1, identity.refreshes)

	stored, _ := store.Load(context.Background(), "u1")
	assert.Equal(t, "new", stored.AccessToken)
	assert.Equal(t, "r1", stored.RefreshToken, "refresh token is kept when not rotated")
	assert.Equal(t, "identify", stored.Scope)
}

func TestTokens_AccessTokenNoRefreshToken(t *testing.T) {
	store := newMemTokenStore()
	store.Save(context.Background(), model.OAuthToken{UserID: "u1", AccessToken: "old", ExpiresAt: fixedNow.Add(-time.Minute)})

	_, err := newTokens(&fakeIdentity{}, store).AccessToken(context.Background(), "u1")
	assert.ErrorIs(t, err, service.ErrNoRefreshToken)
}

func TestTokens_AccessTokenUnknownUser(t *testing.T) {
	_, err := newTokens(&fakeIdentity{}, newMemTokenStore()).AccessToken(context.Background(), "nobody")
	assert.ErrorIs(t, err, outbound.ErrTokenNotFound)
}

func TestTokens_Revoke(t *testing.T) {
	store := newMemTokenStore()
	store.Save(context.Background(), model.OAuthToken{UserID: "u1", AccessToken: "a1"})

	require.NoError(t, newTokens(&fakeIdentity{}, store).Revoke(context.Background(), "u1"))
	_, err := store.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, outbound.ErrTokenNotFound)
}
