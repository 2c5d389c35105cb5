package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

const keyPrefix = "pianoacademy:"

// RedisStore keeps entries in redis so sessions survive process restarts.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(conf *core.Config) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Redis.Addr,
		Password:     conf.Redis.Password,
		DB:           conf.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	b, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	e, err := decodeEntry(b)
	if err != nil {
		return "", err
	}
	return e.Data, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	b, err := encodeEntry(value, time.Now().UTC())
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, b, 0).Err()
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) IsCacheValid(ctx context.Context, key string, ttl time.Duration) bool {
	b, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return false
	}
	e, err := decodeEntry(b)
	if err != nil {
		return false
	}
	return time.Since(e.Timestamp) < ttl
}

func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
