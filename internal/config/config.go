package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables read by the secrets overlay.
const EnvPrefix = "INTERACTBOT"

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Discord       DiscordConfig       `yaml:"discord"`
	OAuth         OAuthConfig         `yaml:"oauth"`
	TokenStore    TokenStoreConfig    `yaml:"tokenStore"`
	Notifications NotificationsConfig `yaml:"notifications"`
	RateLimit     RateLimitConfig     `yaml:"rateLimit"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
	MetricsPort       int           `yaml:"metricsPort"`
	AckTimeout        time.Duration `yaml:"ackTimeout"`
	TrustProxyHeaders bool          `yaml:"trustProxyHeaders"`
}

type DiscordConfig struct {
	ApplicationID   string        `yaml:"applicationID"`
	PublicKey       string        `yaml:"publicKey"`
	BotToken        string        `yaml:"botToken"`
	ClientID        string        `yaml:"clientID"`
	ClientSecret    string        `yaml:"clientSecret"`
	APIBaseURL      string        `yaml:"apiBaseURL"`
	FollowUpTimeout time.Duration `yaml:"followUpTimeout"`
	TokenLifetime   time.Duration `yaml:"tokenLifetime"`
}

type OAuthConfig struct {
	Enabled      bool     `yaml:"enabled"`
	RedirectURL  string   `yaml:"redirectURL"`
	Scopes       []string `yaml:"scopes"`
	CookieSecure bool     `yaml:"cookieSecure"`
}

type TokenStoreConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

type SQLiteConfig struct {
	Path              string `yaml:"path"`
	MaxOpenConns      int    `yaml:"maxOpenConns"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type NotificationsConfig struct {
	Slack SlackConfig `yaml:"slack"`
}

type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Secrets are read from the environment after the file is loaded and win over
// file values when set.
type Secrets struct {
	DiscordPublicKey    string `envconfig:"DISCORD_PUBLIC_KEY"`
	DiscordBotToken     string `envconfig:"DISCORD_BOT_TOKEN"`
	DiscordClientSecret string `envconfig:"DISCORD_CLIENT_SECRET"`
	SlackBotToken       string `envconfig:"SLACK_BOT_TOKEN"`
	RedisPassword       string `envconfig:"REDIS_PASSWORD"`
}

// Load reads a YAML config file, applies the environment overlay and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the INTERACTBOT_* secrets onto cfg.
func ApplyEnv(cfg *Config) error {
	var s Secrets
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	override(&cfg.Discord.PublicKey, s.DiscordPublicKey)
	override(&cfg.Discord.BotToken, s.DiscordBotToken)
	override(&cfg.Discord.ClientSecret, s.DiscordClientSecret)
	override(&cfg.Notifications.Slack.BotToken, s.SlackBotToken)
	override(&cfg.TokenStore.Redis.Password, s.RedisPassword)
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MetricsPort:     9090,
			AckTimeout:      3 * time.Second,
		},
		Discord: DiscordConfig{
			APIBaseURL:      "https://discord.com/api/v10",
			FollowUpTimeout: 10 * time.Second,
			TokenLifetime:   15 * time.Minute,
		},
		OAuth: OAuthConfig{
			Scopes:       []string{"identify"},
			CookieSecure: true,
		},
		TokenStore: TokenStoreConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:              "/data/interactbot.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "interactbot:oauth:",
			},
		},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 600},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// PublicKeyBytes decodes the hex application public key.
func (c DiscordConfig) PublicKeyBytes() (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(c.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding discord.publicKey: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("discord.publicKey must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
