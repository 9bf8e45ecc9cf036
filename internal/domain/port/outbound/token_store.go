package outbound

import (
	"context"
	"errors"

	"github.com/jonny/interactbot/internal/domain/model"
)

var ErrTokenNotFound = errors.New("oauth token not found")

// TokenStore persists OAuth grants keyed by user id.
type TokenStore interface {
	Save(ctx context.Context, token model.OAuthToken) error
	Load(ctx context.Context, userID string) (model.OAuthToken, error)
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}
