package webhook

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jonny/interactbot/internal/adapter/inbound/webhook/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	PublicKey         ed25519.PublicKey
	RateLimit         int
	TrustProxyHeaders bool
}

// Server serves the interactions endpoint and any mounted collaborators.
type Server struct {
	cfg     ServerConfig
	handler http.Handler
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	mounts  map[string]http.Handler
	srv     *http.Server
}

type ServerOption func(*Server)

// WithMount serves h under pattern, outside the signature check.
func WithMount(pattern string, h http.Handler) ServerOption {
	return func(s *Server) { s.mounts[pattern] = h }
}

func NewServer(cfg ServerConfig, handler http.Handler, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		mounts:  make(map[string]http.Handler),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.TrustProxyHeaders)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router:
//
//	GET  /health        liveness
//	POST /interactions  signed interaction webhook
//	*    <mounts>       e.g. /oauth
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.NewLoggingMiddleware(s.logger))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/health", HealthHandler())
	r.With(middleware.BodyReader, middleware.SignatureAuth(s.cfg.PublicKey)).
		Post("/interactions", s.handler.ServeHTTP)

	for pattern, h := range s.mounts {
		r.Mount(pattern, h)
	}
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("interactions server listening", "port", s.cfg.Port)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("interactions server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
