package oauth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/interactbot/internal/adapter/inbound/oauth"
	"github.com/jonny/interactbot/internal/domain/model"
)

type fakeAuthorizer struct {
	code string
	err  error
}

func (f *fakeAuthorizer) AuthCodeURL(state string) string {
	return "https://discord.example/oauth2/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeAuthorizer) Authorize(_ context.Context, code string) (model.User, error) {
	f.code = code
	if f.err != nil {
		return model.User{}, f.err
	}
	return model.User{ID: "u1", Username: "alice"}, nil
}

func newRoutes(auth *fakeAuthorizer) http.Handler {
	mux := http.NewServeMux()
	h := oauth.NewHandler(oauth.Config{CookieSecure: true}, auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux.Handle("/oauth/", http.StripPrefix("/oauth", h.Routes()))
	return mux
}

func authorize(t *testing.T, routes http.Handler) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/authorize", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return cookies[0], loc.Query().Get("state")
}

func TestAuthorize_RedirectsWithState(t *testing.T) {
	cookie, state := authorize(t, newRoutes(&fakeAuthorizer{}))
	assert.NotEmpty(t, state)
	assert.Equal(t, cookie.Value, state)
}

func TestCallback_Success(t *testing.T) {
	auth := &fakeAuthorizer{}
	routes := newRoutes(auth)
	cookie, state := authorize(t, routes)

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?code=abc&state="+state, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", auth.code)
	assert.JSONEq(t, `{"status":"authorized","userID":"u1","username":"alice"}`, rec.Body.String())
}

func TestCallback_Rejects(t *testing.T) {
	routes := newRoutes(&fakeAuthorizer{})
	cookie, state := authorize(t, routes)

	tests := []struct {
		name   string
		query  string
		cookie *http.Cookie
	}{
		{"no cookie", "code=abc&state=" + state, nil},
		{"state mismatch", "code=abc&state=other", cookie},
		{"no state", "code=abc", cookie},
		{"no code", "state=" + state, cookie},
		{"denied", "error=access_denied", cookie},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/oauth/callback?"+tt.query, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCallback_AuthorizeFails(t *testing.T) {
	auth := &fakeAuthorizer{err: errors.New("invalid_grant")}
	routes := newRoutes(auth)
	cookie, state := authorize(t, routes)

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?code=abc&state="+state, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
