package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/inbound"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

var ErrNoRefreshToken = errors.New("stored token expired and has no refresh token")

// Tokens completes authorization-code grants and hands out valid access
// tokens for users that authorized the application.
type Tokens struct {
	identity    outbound.IdentityProvider
	store       outbound.TokenStore
	onAuthorize inbound.AuthorizeHook
	logger      *slog.Logger
	now         func() time.Time
}

type TokensOption func(*Tokens)

// WithAuthorizeHook runs hook after each successful authorization.
func WithAuthorizeHook(hook inbound.AuthorizeHook) TokensOption {
	return func(t *Tokens) { t.onAuthorize = hook }
}

func WithTokensClock(now func() time.Time) TokensOption {
	return func(t *Tokens) { t.now = now }
}

func NewTokens(identity outbound.IdentityProvider, store outbound.TokenStore, logger *slog.Logger, opts ...TokensOption) *Tokens {
	t := &Tokens{
		identity: identity,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tokens) AuthCodeURL(state string) string {
	return t.identity.AuthCodeURL(state)
}

// Authorize exchanges code, identifies the user, stores the grant and runs
// the authorize hook.
func (t *Tokens) Authorize(ctx context.Context, code string) (model.User, error) {
	tok, err := t.identity.Exchange(ctx, code)
	if err != nil {
		return model.User{}, err
	}
	user, err := t.identity.CurrentUser(ctx, tok)
	if err != nil {
		return model.User{}, fmt.Errorf("identifying user: %w", err)
	}

	stored := toModel(user.ID, tok, t.now())
	if err := t.store.Save(ctx, stored); err != nil {
		return model.User{}, fmt.Errorf("storing token: %w", err)
	}
	t.logger.Info("user authorized", "userID", user.ID, "scope", stored.Scope)

	if t.onAuthorize != nil {
		if err := t.onAuthorize(ctx, user, stored); err != nil {
			return model.User{}, fmt.Errorf("authorize hook: %w", err)
		}
	}
	return user, nil
}

// AccessToken returns a usable access token for userID, refreshing and
// persisting the grant when the stored one has expired.
func (t *Tokens) AccessToken(ctx context.Context, userID string) (string, error) {
	stored, err := t.store.Load(ctx, userID)
	if err != nil {
		return "", err
	}
	if !stored.Expired(t.now()) {
		return stored.AccessToken, nil
	}
	if stored.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	fresh, err := t.identity.Refresh(ctx, &oauth2.Token{
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.ExpiresAt,
	})
	if err != nil {
		return "", err
	}
	refreshed := toModel(userID, fresh, t.now())
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = stored.RefreshToken
	}
	if refreshed.Scope == "" {
		refreshed.Scope = stored.Scope
	}
	if err := t.store.Save(ctx, refreshed); err != nil {
		return "", fmt.Errorf("storing refreshed token: %w", err)
	}
	t.logger.Debug("token refreshed", "userID", userID, "expiresAt", refreshed.ExpiresAt)
	return refreshed.AccessToken, nil
}

// Revoke forgets the stored grant for userID.
func (t *Tokens) Revoke(ctx context.Context, userID string) error {
	return t.store.Delete(ctx, userID)
}

func toModel(userID string, tok *oauth2.Token, now time.Time) model.OAuthToken {
	scope, _ := tok.Extra("scope").(string)
	return model.OAuthToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Scope:        scope,
		ExpiresAt:    tok.Expiry,
		UpdatedAt:    now.UTC(),
	}
}
