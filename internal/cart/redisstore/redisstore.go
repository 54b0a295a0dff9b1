// Package redisstore keeps cart snapshots in Redis, one key per cart session.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-supply-api/internal/cart"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 30 * 24 * time.Hour

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Storage is a cart.Storage bound to one session key.
type Storage struct {
	client  cmdable
	session string
	ttl     time.Duration
}

// Option configures a Storage.
type Option func(*Storage)

// WithTTL sets the key expiry refreshed on every write. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Storage) {
		s.ttl = ttl
	}
}

// New binds a storage to session. An empty session starts a new one.
func New(client redis.Cmdable, session string, opts ...Option) *Storage {
	if session == "" {
		session = uuid.NewString()
	}
	s := &Storage{client: client, session: session, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Session identifies the cart; clients present it to resume the cart.
func (s *Storage) Session() string { return s.session }

// Key is the Redis key holding the snapshot.
func (s *Storage) Key() string {
	return fmt.Sprintf("%s:%s", cart.StorageKey, s.session)
}

func (s *Storage) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart %s: %w", s.session, err)
	}
	return data, nil
}

func (s *Storage) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.Key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write cart %s: %w", s.session, err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", s.session, err)
	}
	return nil
}

var _ cart.Storage = (*Storage)(nil)
