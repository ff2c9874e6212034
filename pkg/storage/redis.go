package storage

import (
	"context"
	goerrors "errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore stores values in Redis. Values never expire.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the server at url (redis://host:port/db) and
// checks that it answers.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, storageErr(BackendRedis, "parse url", err)
	}
	client := redis.NewClient(opts)
	err = ping(ctx, func(ctx context.Context) error { return client.Ping(ctx).Err() })
	if err != nil {
		client.Close()
		return nil, storageErr(BackendRedis, "ping", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(c *redis.Client) *RedisStore {
	return &RedisStore{client: c}
}

// Get returns the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if goerrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(BackendRedis, "get", err)
	}
	return data, true, nil
}

// Set stores the value for key without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return storageErr(BackendRedis, "set", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return storageErr(BackendRedis, "delete", err)
	}
	return nil
}

func (s *RedisStore) Name() string { return BackendRedis }

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
