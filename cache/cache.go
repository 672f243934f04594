package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores provider suggestion payloads keyed by provider namespace
// and normalized query text.
type Cache interface {
	Get(ctx context.Context, namespace, query string) ([]byte, bool)
	Set(ctx context.Context, namespace, query string, data []byte) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      10 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, namespace, query string) ([]byte, bool) {
	data, err := c.client.Get(ctx, Key(namespace, query)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, namespace, query string, data []byte) error {
	return c.client.Set(ctx, Key(namespace, query), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, namespace, query string) ([]byte, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, namespace, query string, data []byte) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key is case- and whitespace-insensitive so "Paris " and "paris" share an entry.
func Key(namespace, query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := sha256.Sum256([]byte(normalized))
	return "suggest:" + namespace + ":" + hex.EncodeToString(hash[:])
}
