// Package redis implements the store port on a Redis server.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"weightlog/internal/domain"
)

// Store wraps a Redis client and implements the store port.
type Store struct {
	client *goredis.Client
}

var _ domain.Store = (*Store)(nil)

// Open connects to Redis and pings it.
func Open(addr string, db int) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Store{client: client}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get returns the stored value for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Set writes the value for key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}
