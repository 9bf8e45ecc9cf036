package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonny/interactbot/internal/adapter/inbound/oauth"
	"github.com/jonny/interactbot/internal/adapter/inbound/webhook"
	"github.com/jonny/interactbot/internal/adapter/outbound/discord"
	"github.com/jonny/interactbot/internal/adapter/outbound/notification"
	slacknotifier "github.com/jonny/interactbot/internal/adapter/outbound/notification/slack"
	"github.com/jonny/interactbot/internal/adapter/outbound/persistence/redis"
	"github.com/jonny/interactbot/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/interactbot/internal/commands"
	"github.com/jonny/interactbot/internal/config"
	"github.com/jonny/interactbot/internal/dispatch"
	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
	"github.com/jonny/interactbot/internal/domain/service"
	"github.com/jonny/interactbot/internal/metrics"
	"github.com/jonny/interactbot/pkg/health"
	"github.com/jonny/interactbot/pkg/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactions webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := buildLogger(os.Stdout, cfg.Logging)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

type closeFunc func() error

// openTokenStore returns the configured OAuth token store.
func openTokenStore(cfg config.TokenStoreConfig) (outbound.TokenStore, closeFunc, error) {
	switch cfg.Driver {
	case "redis":
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		return store, store.Close, nil
	case "sqlite", "":
		store, err := sqlite.NewStore(sqlite.Config{
			Path:              cfg.SQLite.Path,
			MaxOpenConns:      cfg.SQLite.MaxOpenConns,
			PragmaJournalMode: cfg.SQLite.PragmaJournalMode,
			PragmaBusyTimeout: cfg.SQLite.PragmaBusyTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return sqlite.NewTokenRepo(store), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store driver %q", cfg.Driver)
	}
}

func buildNotifier(cfg config.SlackConfig, logger *slog.Logger) outbound.FailureNotifier {
	if cfg.Enabled && cfg.BotToken != "" {
		return slacknotifier.NewNotifier(slacknotifier.Config{
			BotToken: cfg.BotToken,
			Channel:  cfg.Channel,
		})
	}
	logger.Info("slack failure notifications disabled")
	return notification.NewNoopNotifier(logger)
}

func identityClient(cfg *config.Config) *discord.IdentityClient {
	return discord.NewIdentityClient(discord.OAuthConfig{
		APIBaseURL:   cfg.Discord.APIBaseURL,
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		Scopes:       cfg.OAuth.Scopes,
	})
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	publicKey, err := cfg.Discord.PublicKeyBytes()
	if err != nil {
		return err
	}

	// --- Token store ---
	tokenStore, closeStore, err := openTokenStore(cfg.TokenStore)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Metrics ---
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	instruments := metrics.New(promReg)

	// --- Outbound ---
	followUps := instruments.InstrumentFollowUps(discord.NewFollowUpClient(discord.Config{
		APIBaseURL: cfg.Discord.APIBaseURL,
		Timeout:    cfg.Discord.FollowUpTimeout,
		UserAgent:  version.UserAgent(),
	}))
	notifier := buildNotifier(cfg.Notifications.Slack, logger)

	// --- Dispatch ---
	registry := dispatch.NewRegistry()
	commands.New(logger).Register(registry)
	logger.Info("handlers registered", "commands", registry.Commands())

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		AckTimeout:    cfg.Server.AckTimeout,
		TokenLifetime: cfg.Discord.TokenLifetime,
	}, registry, followUps,
		dispatch.WithObserver(instruments),
		dispatch.WithNotifier(notifier),
		dispatch.WithLogger(logger),
	)

	// --- Webhook ---
	var serverOpts []webhook.ServerOption
	if cfg.OAuth.Enabled {
		tokens := service.NewTokens(identityClient(cfg), tokenStore, logger,
			service.WithAuthorizeHook(func(ctx context.Context, user model.User, _ model.OAuthToken) error {
				logger.Info("user authorized application", "userID", user.ID, "username", user.Username)
				return nil
			}),
		)
		oauthHandler := oauth.NewHandler(oauth.Config{CookieSecure: cfg.OAuth.CookieSecure}, tokens, logger)
		serverOpts = append(serverOpts, webhook.WithMount("/oauth", oauthHandler.Routes()))
	}

	rateLimit := 0
	if cfg.RateLimit.Enabled {
		rateLimit = cfg.RateLimit.RequestsPerMinute
	}
	webhookServer := webhook.NewServer(webhook.ServerConfig{
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		PublicKey:         publicKey,
		RateLimit:         rateLimit,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}, webhook.NewHandler(dispatcher, logger), logger, serverOpts...)

	// --- Health checker ---
	checker := health.NewChecker()
	checker.Register("tokenStore", tokenStore.Ping)

	// --- Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg}))
	metricsMux.HandleFunc("/healthz", checker.LivenessHandler())
	metricsMux.HandleFunc("/readyz", checker.ReadinessHandler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Webhook HTTP server.
	g.Go(func() error {
		return webhookServer.Start(gCtx)
	})

	// Metrics/health server.
	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Server.MetricsPort)
		errCh := make(chan error, 1)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		select {
		case <-gCtx.Done():
			checker.Drain()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	})

	logger.Info("interactbot started", "version", version.String())

	err = g.Wait()
	drainHandlers(dispatcher, cfg.Server.ShutdownTimeout, logger)
	if err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	logger.Info("interactbot stopped")
	return nil
}

// drainHandlers waits for background handlers to finish their follow-ups,
// giving up after timeout.
func drainHandlers(d *dispatch.Dispatcher, timeout time.Duration, logger *slog.Logger) {
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("background handlers still running at shutdown", "timeout", timeout)
	}
}
