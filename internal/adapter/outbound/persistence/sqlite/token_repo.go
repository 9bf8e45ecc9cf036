package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

// TokenRepo implements outbound.TokenStore using SQLite.
type TokenRepo struct {
	store *Store
}

var _ outbound.TokenStore = (*TokenRepo)(nil)

func NewTokenRepo(store *Store) *TokenRepo {
	return &TokenRepo{store: store}
}

// Save inserts or replaces the grant for token.UserID.
func (r *TokenRepo) Save(ctx context.Context, token model.OAuthToken) error {
	if token.UserID == "" {
		return errors.New("saving token: empty user id")
	}
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = time.Now()
	}

	const q = `INSERT INTO oauth_tokens
		(user_id, access_token, refresh_token, token_type, scope, expires_at, updated_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`

	_, err := r.store.DB.ExecContext(ctx, q,
		token.UserID, token.AccessToken, token.RefreshToken,
		token.TokenType, token.Scope,
		nullableTime(token.ExpiresAt), token.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

func (r *TokenRepo) Load(ctx context.Context, userID string) (model.OAuthToken, error) {
	const q = `SELECT user_id, access_token, refresh_token, token_type, scope, expires_at, updated_at
		FROM oauth_tokens WHERE user_id = ?`

	var (
		t         model.OAuthToken
		expiresAt sql.NullTime
	)
	err := r.store.DB.QueryRowContext(ctx, q, userID).Scan(
		&t.UserID, &t.AccessToken, &t.RefreshToken,
		&t.TokenType, &t.Scope, &expiresAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OAuthToken{}, fmt.Errorf("token for %s: %w", userID, outbound.ErrTokenNotFound)
	}
	if err != nil {
		return model.OAuthToken{}, fmt.Errorf("loading token: %w", err)
	}
	if expiresAt.Valid {
		t.ExpiresAt = expiresAt.Time
	}
	return t, nil
}

func (r *TokenRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.store.DB.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("token for %s: %w", userID, outbound.ErrTokenNotFound)
	}
	return nil
}

func (r *TokenRepo) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
