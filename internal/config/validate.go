package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for errors and reports all of them at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		errs = append(errs, "server.metricsPort must be between 0 and 65535")
	}
	if cfg.Server.MetricsPort != 0 && cfg.Server.MetricsPort == cfg.Server.Port {
		errs = append(errs, "server.metricsPort must differ from server.port")
	}
	if cfg.Server.AckTimeout <= 0 {
		errs = append(errs, "server.ackTimeout must be positive")
	}

	if cfg.Discord.ApplicationID == "" {
		errs = append(errs, "discord.applicationID is required")
	}
	if cfg.Discord.PublicKey == "" {
		errs = append(errs, "discord.publicKey is required")
	} else if _, err := cfg.Discord.PublicKeyBytes(); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Discord.TokenLifetime <= 0 {
		errs = append(errs, "discord.tokenLifetime must be positive")
	}
	if cfg.Discord.TokenLifetime > 0 && cfg.Server.AckTimeout >= cfg.Discord.TokenLifetime {
		errs = append(errs, "server.ackTimeout must be shorter than discord.tokenLifetime")
	}

	if cfg.OAuth.Enabled {
		if cfg.Discord.ClientID == "" {
			errs = append(errs, "discord.clientID is required when oauth is enabled")
		}
		if cfg.Discord.ClientSecret == "" {
			errs = append(errs, "discord.clientSecret is required when oauth is enabled")
		}
		if cfg.OAuth.RedirectURL == "" {
			errs = append(errs, "oauth.redirectURL is required when oauth is enabled")
		}
	}

	switch cfg.TokenStore.Driver {
	case "sqlite":
		if cfg.TokenStore.SQLite.Path == "" {
			errs = append(errs, "tokenStore.sqlite.path is required when driver is sqlite")
		}
	case "redis":
		if cfg.TokenStore.Redis.Addr == "" {
			errs = append(errs, "tokenStore.redis.addr is required when driver is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("tokenStore.driver must be sqlite or redis (got %q)", cfg.TokenStore.Driver))
	}

	if cfg.Notifications.Slack.Enabled {
		if cfg.Notifications.Slack.BotToken == "" {
			errs = append(errs, "notifications.slack.botToken is required when slack is enabled")
		}
		if cfg.Notifications.Slack.Channel == "" {
			errs = append(errs, "notifications.slack.channel is required when slack is enabled")
		}
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, "rateLimit.requestsPerMinute must be positive when rate limiting is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn or error (got %q)", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("logging.format must be json or text (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
