package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jafarshop/productvariant/internal/domain"
)

const definitionCacheKeyPrefix = "productvariant:definitions:"

// DefinitionCache stores the metafield definition snapshot of a namespace
type DefinitionCache interface {
	Get(ctx context.Context, namespace string) ([]domain.FieldDefinition, bool, error)
	Set(ctx context.Context, namespace string, definitions []domain.FieldDefinition) error
}

// RedisDefinitionCache keeps definitions in Redis as JSON with a TTL
type RedisDefinitionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDefinitionCache connects to Redis from a redis:// URL
func NewRedisDefinitionCache(ctx context.Context, url string, ttl time.Duration) (*RedisDefinitionCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisDefinitionCache{client: client, ttl: ttl}, nil
}

func (c *RedisDefinitionCache) Get(ctx context.Context, namespace string) ([]domain.FieldDefinition, bool, error) {
	raw, err := c.client.Get(ctx, definitionCacheKeyPrefix+namespace).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var definitions []domain.FieldDefinition
	if err := json.Unmarshal(raw, &definitions); err != nil {
		return nil, false, fmt.Errorf("decode cached definitions: %w", err)
	}
	return definitions, true, nil
}

func (c *RedisDefinitionCache) Set(ctx context.Context, namespace string, definitions []domain.FieldDefinition) error {
	raw, err := json.Marshal(definitions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, definitionCacheKeyPrefix+namespace, raw, c.ttl).Err()
}

// Close releases the Redis connection pool
func (c *RedisDefinitionCache) Close() error {
	return c.client.Close()
}
