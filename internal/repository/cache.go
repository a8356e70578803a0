package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vlxd/internal/config"
	"vlxd/internal/logger"
	"vlxd/internal/metrics"
	"vlxd/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Catalog is the read side of the product catalog
type Catalog interface {
	FindActiveProductsByNameContains(ctx context.Context, fragments []string, limit int) ([]model.Product, error)
	FindActiveProductsByNormalizedName(ctx context.Context, term string, limit int) ([]model.Product, error)
}

var _ Catalog = (*PostgresRepository)(nil)
var _ Catalog = (*CachedCatalog)(nil)

const cacheKeyPrefix = "vlxd:catalog:"

// NewRedisClient builds a client from config and checks connectivity
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// CachedCatalog is a read-through Redis cache in front of a Catalog.
// Redis failures are logged and the lookup falls through to the backing store.
type CachedCatalog struct {
	next   Catalog
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog wraps next; a non-positive ttl defaults to five minutes
func NewCachedCatalog(next Catalog, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCatalog{next: next, rdb: rdb, ttl: ttl, logger: logger.OrNop(log)}
}

func (c *CachedCatalog) FindActiveProductsByNameContains(ctx context.Context, fragments []string, limit int) ([]model.Product, error) {
	key := fmt.Sprintf("%scontains:%d:%s", cacheKeyPrefix, limit, strings.ToLower(strings.Join(fragments, "|")))
	return c.lookup(ctx, key, func() ([]model.Product, error) {
		return c.next.FindActiveProductsByNameContains(ctx, fragments, limit)
	})
}

func (c *CachedCatalog) FindActiveProductsByNormalizedName(ctx context.Context, term string, limit int) ([]model.Product, error) {
	key := fmt.Sprintf("%snormalized:%d:%s", cacheKeyPrefix, limit, term)
	return c.lookup(ctx, key, func() ([]model.Product, error) {
		return c.next.FindActiveProductsByNormalizedName(ctx, term, limit)
	})
}

func (c *CachedCatalog) lookup(ctx context.Context, key string, load func() ([]model.Product, error)) ([]model.Product, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var products []model.Product
		if jsonErr := json.Unmarshal(val, &products); jsonErr == nil {
			metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
			return products, nil
		}
		c.logger.Warn("Discarding unreadable catalog cache entry", zap.String("key", key))
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
	}

	products, err := load()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(products)
	if err != nil {
		return products, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return products, nil
}
