package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/repository"
)

const shopKeyPrefix = "marketplace:shop:"

// DefaultShopTTL is used when NewShopCache is given a non-positive TTL.
const DefaultShopTTL = 10 * time.Minute

// ShopCache is a read-through cache in front of a ShopRepository. Cache
// failures are logged and the lookup falls through to the wrapped
// repository, so Redis is never on the error path.
type ShopCache struct {
	next   repository.ShopRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewShopCache wraps next with a Redis cache.
func NewShopCache(next repository.ShopRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *ShopCache {
	if ttl <= 0 {
		ttl = DefaultShopTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShopCache{next: next, client: client, ttl: ttl, logger: logger}
}

func shopKey(id string) string {
	return shopKeyPrefix + id
}

// GetByID returns the cached shop or loads it from the wrapped repository
// and stores it. Misses in the wrapped repository are not cached.
func (c *ShopCache) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	shop, err := c.get(ctx, id)
	if err == nil {
		return shop, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "shop cache read failed",
			slog.String("shop_id", id),
			slog.String("error", err.Error()),
		)
	}

	shop, err = c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, shop); err != nil {
		c.logger.WarnContext(ctx, "shop cache write failed",
			slog.String("shop_id", id),
			slog.String("error", err.Error()),
		)
	}
	return shop, nil
}

func (c *ShopCache) get(ctx context.Context, id string) (*domain.Shop, error) {
	data, err := c.client.Get(ctx, shopKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var shop domain.Shop
	if err := json.Unmarshal(data, &shop); err != nil {
		return nil, fmt.Errorf("unmarshal cached shop: %w", err)
	}
	return &shop, nil
}

func (c *ShopCache) set(ctx context.Context, shop *domain.Shop) error {
	data, err := json.Marshal(shop)
	if err != nil {
		return fmt.Errorf("marshal shop: %w", err)
	}
	if err := c.client.Set(ctx, shopKey(shop.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set shop: %w", err)
	}
	return nil
}
