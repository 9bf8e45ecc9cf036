package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

const defaultPrefix = "interactbot:oauth:"

// TokenStore implements outbound.TokenStore using Redis. Each grant is a
// JSON string under prefix+userID.
type TokenStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ outbound.TokenStore = (*TokenStore)(nil)

type Option func(*TokenStore)

// WithTTL expires stored grants after ttl. Zero keeps them until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *TokenStore) { s.ttl = ttl }
}

func WithPrefix(prefix string) Option {
	return func(s *TokenStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *TokenStore {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

func NewFromClient(client *backend.Client, opts ...Option) *TokenStore {
	s := &TokenStore{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenStore) key(userID string) string { return s.prefix + userID }

func (s *TokenStore) Save(ctx context.Context, token model.OAuthToken) error {
	if token.UserID == "" {
		return errors.New("saving token: empty user id")
	}
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving token to redis: %w", err)
	}
	return nil
}

func (s *TokenStore) Load(ctx context.Context, userID string) (model.OAuthToken, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return model.OAuthToken{}, fmt.Errorf("token for %s: %w", userID, outbound.ErrTokenNotFound)
	}
	if err != nil {
		return model.OAuthToken{}, fmt.Errorf("loading token from redis: %w", err)
	}
	var token model.OAuthToken
	if err := json.Unmarshal(val, &token); err != nil {
		return model.OAuthToken{}, fmt.Errorf("decoding token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	n, err := s.client.Del(ctx, s.key(userID)).Result()
	if err != nil {
		return fmt.Errorf("deleting token from redis: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("token for %s: %w", userID, outbound.ErrTokenNotFound)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *TokenStore) Close() error { return s.client.Close() }
