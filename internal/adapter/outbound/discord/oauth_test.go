package discord

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/@me", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		io.WriteString(w, `{"id":"u1","username":"alice","global_name":"Alice"}`)
	}))
	defer srv.Close()

	client := NewIdentityClient(OAuthConfig{APIBaseURL: srv.URL, ClientID: "cid"})
	user, err := client.CurrentUser(context.Background(), &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Alice", user.DisplayName())
}

func TestAuthCodeURL(t *testing.T) {
	client := NewIdentityClient(OAuthConfig{ClientID: "cid", RedirectURL: "https://bot.example/oauth/callback"})
	u := client.AuthCodeURL("state-1")
	assert.Contains(t, u, "https://discord.com/oauth2/authorize")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "scope=identify")
}
