package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at rawURL
// ("redis://[:password@]host:port/db") and pings it.
func NewRedisStore(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewRedisStoreFromClient(ctx, redis.NewClient(opts))
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(ctx context.Context, client *redis.Client) (*RedisStore, error) {
	err := RetryWithBackoff(ctx, func() error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

// transient marks network failures as retryable.
func transient(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		return transient(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return transient(s.client.Set(ctx, key, data, ttl).Err())
	})
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
