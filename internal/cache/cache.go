package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/models"
)

// Cache stores booking links by request. Links are derived data, so a miss
// or a failure only costs a rebuild.
type Cache interface {
	Get(ctx context.Context, key Key) (string, bool)
	Set(ctx context.Context, key Key, link string) error
	Close() error
}

// Key identifies a link: the canonical request plus the fingerprint of the
// builder that produced it.
type Key struct {
	Builder string
	Params  models.FlightParams
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
		TTL:      24 * time.Hour,
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
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key Key) (string, bool) {
	link, err := c.client.Get(ctx, generateKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("Booking link cache read failed")
		}
		return "", false
	}
	return link, true
}

func (c *RedisCache) Set(ctx context.Context, key Key, link string) error {
	return c.client.Set(ctx, generateKey(key), link, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key Key) (string, bool) {
	return "", false
}

func (c *NoOpCache) Set(ctx context.Context, key Key, link string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func generateKey(key Key) string {
	data, _ := json.Marshal(key)
	hash := sha256.Sum256(data)
	return "booking:" + hex.EncodeToString(hash[:])
}
