package kvstore

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore persists key-value entries in Redis under a fixed prefix.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection before
// returning a usable store.
func NewRedis(addr, password string) (*RedisStore, error) {

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{
		client: client,
		prefix: "mindweek:",
	}, nil

}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == goredis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value string) error {
	// Entries live until explicitly removed; no TTL.
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
