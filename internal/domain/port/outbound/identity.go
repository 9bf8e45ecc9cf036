package outbound

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/jonny/interactbot/internal/domain/model"
)

// IdentityProvider performs the OAuth authorization-code flow against the
// platform.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
	CurrentUser(ctx context.Context, token *oauth2.Token) (model.User, error)
}
