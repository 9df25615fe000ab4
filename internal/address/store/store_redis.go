package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"simohu/internal/address/models"
	"simohu/internal/platform/logger"
	"simohu/pkg/platform/sentinel"
)

const keyPrefix = "simohu:cep:"

// RedisCache stores postal-code lookups as JSON with a per-key TTL. Postal
// data is public, so it can be shared across client instances.
type RedisCache struct {
	client   redis.UniversalClient
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewRedisCache wraps client. A nil logger discards output.
func NewRedisCache(client redis.UniversalClient, cacheTTL time.Duration, log *slog.Logger) *RedisCache {
	if log == nil {
		log = logger.Discard()
	}
	return &RedisCache{client: client, cacheTTL: cacheTTL, logger: log}
}

func key(postalCode string) string {
	return keyPrefix + postalCode
}

// SaveAddress stores address under its postal code. Nil is a no-op.
func (c *RedisCache) SaveAddress(ctx context.Context, address *models.Address) error {
	if address == nil {
		return nil
	}
	payload, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	if err := c.client.Set(ctx, key(address.PostalCode), payload, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// FindAddress returns sentinel.ErrNotFound on a miss and wraps
// sentinel.ErrUnavailable when Redis cannot be reached.
func (c *RedisCache) FindAddress(ctx context.Context, postalCode string) (*models.Address, error) {
	raw, err := c.client.Get(ctx, key(postalCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", sentinel.ErrUnavailable, err)
	}
	var address models.Address
	if err := json.Unmarshal(raw, &address); err != nil {
		c.logger.Warn("dropping undecodable cached address", "postal_code", postalCode, "error", err)
		_ = c.client.Del(ctx, key(postalCode)).Err()
		return nil, sentinel.ErrNotFound
	}
	return &address, nil
}
