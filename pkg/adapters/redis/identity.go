// Package redis keeps the logged-in identity in Redis, so several machines can share one login.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// IdentityStore implements ports.IdentityStore using Redis.
type IdentityStore struct {
	client  *backend.Client
	prefix  string
	profile string
	ttl     time.Duration
}

// Option configures the IdentityStore.
type Option func(*IdentityStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *IdentityStore) {
		s.prefix = prefix
	}
}

// WithProfile selects which identity slot to use. Defaults to "default".
func WithProfile(profile string) Option {
	return func(s *IdentityStore) {
		s.profile = profile
	}
}

// WithTTL makes the login expire. Zero keeps it until logout.
func WithTTL(ttl time.Duration) Option {
	return func(s *IdentityStore) {
		s.ttl = ttl
	}
}

// New creates a store with its own client.
func New(address, password string, db int, opts ...Option) *IdentityStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *IdentityStore {
	s := &IdentityStore{
		client:  client,
		prefix:  "broilr:identity:",
		profile: "default",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IdentityStore) key() string {
	return s.prefix + s.profile
}

// Load returns the stored username.
func (s *IdentityStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrNotLoggedIn
		}
		return "", fmt.Errorf("failed to get identity from redis: %w", err)
	}
	return val, nil
}

// Save stores the username, refreshing the TTL.
func (s *IdentityStore) Save(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if err := s.client.Set(ctx, s.key(), username, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save identity to redis: %w", err)
	}
	return nil
}

// Clear deletes the key.
func (s *IdentityStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear identity in redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *IdentityStore) Close() error {
	return s.client.Close()
}
