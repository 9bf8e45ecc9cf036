package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

type OAuthConfig struct {
	APIBaseURL   string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// IdentityClient implements outbound.IdentityProvider with the platform's
// authorization-code grant.
type IdentityClient struct {
	oauth2.Config
	apiBaseURL string
}

var _ outbound.IdentityProvider = (*IdentityClient)(nil)

func NewIdentityClient(cfg OAuthConfig) *IdentityClient {
	base := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if base == "" {
		base = DefaultAPIBaseURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"identify"}
	}
	return &IdentityClient{
		Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://discord.com/oauth2/authorize",
				TokenURL:  base + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: base,
	}
}

func (c *IdentityClient) AuthCodeURL(state string) string {
	return c.Config.AuthCodeURL(state)
}

func (c *IdentityClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

// Refresh returns token unchanged while it is valid and a new token from the
// refresh grant otherwise.
func (c *IdentityClient) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	tok, err := c.Config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return tok, nil
}

// CurrentUser fetches the user that granted token.
func (c *IdentityClient) CurrentUser(ctx context.Context, token *oauth2.Token) (model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/users/@me", nil)
	if err != nil {
		return model.User{}, fmt.Errorf("creating user request: %w", err)
	}

	resp, err := c.Config.Client(ctx, token).Do(req)
	if err != nil {
		return model.User{}, fmt.Errorf("calling discord: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.User{}, fmt.Errorf("reading user response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.User{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var user model.User
	if err := json.Unmarshal(body, &user); err != nil {
		return model.User{}, fmt.Errorf("decoding user: %w", err)
	}
	return user, nil
}
