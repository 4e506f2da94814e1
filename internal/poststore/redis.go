package poststore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBucket keeps every record of a namespace in one hash, keyed by slug.
type RedisBucket struct {
	client *redis.Client
	hash   string
}

type RedisBucketConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

func NewRedisBucket(ctx context.Context, cfg RedisBucketConfig) (*RedisBucket, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBucket{client: client, hash: cfg.Namespace}, nil
}

func (b *RedisBucket) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.HGet(ctx, b.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *RedisBucket) Put(ctx context.Context, key string, data []byte) error {
	return b.client.HSet(ctx, b.hash, key, data).Err()
}

func (b *RedisBucket) Delete(ctx context.Context, key string) error {
	n, err := b.client.HDel(ctx, b.hash, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *RedisBucket) Keys(ctx context.Context) ([]string, error) {
	return b.client.HKeys(ctx, b.hash).Result()
}

func (b *RedisBucket) Close() error {
	return b.client.Close()
}
