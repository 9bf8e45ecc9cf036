package oauth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/pkg/apierror"
)

const (
	stateCookie = "interactbot_oauth_state"
	stateMaxAge = 10 * time.Minute
)

// Authorizer is the token service behind the OAuth endpoints.
type Authorizer interface {
	AuthCodeURL(state string) string
	Authorize(ctx context.Context, code string) (model.User, error)
}

type Config struct {
	// CookieSecure marks the state cookie Secure. Disable only for local HTTP.
	CookieSecure bool
}

// Handler serves the authorization-code redirect and callback.
type Handler struct {
	cfg    Config
	auth   Authorizer
	logger *slog.Logger
}

func NewHandler(cfg Config, auth Authorizer, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, auth: auth, logger: logger}
}

// Routes returns a router meant to be mounted under /oauth.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/authorize", h.Authorize)
	r.Get("/callback", h.Callback)
	return r
}

// Authorize sets a fresh state cookie and redirects to the consent screen.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/oauth",
		MaxAge:   int(stateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// Callback checks state, completes the grant and reports the user.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		apierror.Write(w, apierror.WithDetail(http.StatusBadRequest, "authorization denied", e))
		return
	}

	cookie, err := r.Cookie(stateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		apierror.Write(w, apierror.BadRequest("invalid oauth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/oauth", MaxAge: -1})

	code := q.Get("code")
	if code == "" {
		apierror.Write(w, apierror.BadRequest("missing authorization code"))
		return
	}

	user, err := h.auth.Authorize(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback failed", "error", err)
		apierror.Write(w, apierror.WithDetail(http.StatusBadGateway, "authorization failed", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":   "authorized",
		"userID":   user.ID,
		"username": user.DisplayName(),
	})
}
