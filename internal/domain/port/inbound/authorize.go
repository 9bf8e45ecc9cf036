package inbound

import (
	"context"

	"github.com/jonny/interactbot/internal/domain/model"
)

// AuthorizeHook runs after a user completed the OAuth flow and the grant was
// stored. It may block on I/O.
type AuthorizeHook func(ctx context.Context, user model.User, token model.OAuthToken) error
