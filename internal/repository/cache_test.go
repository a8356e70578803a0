package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlxd/internal/model"
)

type countingCatalog struct {
	products []model.Product
	err      error
	calls    int
}

func (c *countingCatalog) FindActiveProductsByNameContains(_ context.Context, _ []string, _ int) ([]model.Product, error) {
	c.calls++
	return c.products, c.err
}

func (c *countingCatalog) FindActiveProductsByNormalizedName(_ context.Context, _ string, _ int) ([]model.Product, error) {
	c.calls++
	return c.products, c.err
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	mr, rdb := setupRedis(t)
	brand := "Hà Tiên"
	backing := &countingCatalog{products: []model.Product{
		{ID: "p1", Name: "Xi măng Hà Tiên", Brand: &brand, Price: 85000, Unit: "bao", IsActive: true},
	}}
	cache := NewCachedCatalog(backing, rdb, time.Minute, nil)
	ctx := context.Background()

	first, err := cache.FindActiveProductsByNameContains(ctx, []string{"Xi măng", "Xi"}, 1)
	require.NoError(t, err)
	second, err := cache.FindActiveProductsByNameContains(ctx, []string{"Xi măng", "Xi"}, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, backing.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, 85000.0, second[0].Price)
	require.NotNil(t, second[0].Brand)
	assert.Equal(t, "Hà Tiên", *second[0].Brand)

	key := "vlxd:catalog:contains:1:xi măng|xi"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err = cache.FindActiveProductsByNameContains(ctx, []string{"Xi măng", "Xi"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.calls, "expired entry reloads")
}

func TestCachedCatalog_NormalizedNameUsesSeparateKey(t *testing.T) {
	_, rdb := setupRedis(t)
	backing := &countingCatalog{products: []model.Product{{ID: "p1", Name: "Gạch ống"}}}
	cache := NewCachedCatalog(backing, rdb, 0, nil)
	ctx := context.Background()

	_, err := cache.FindActiveProductsByNormalizedName(ctx, "gach", 5)
	require.NoError(t, err)
	_, err = cache.FindActiveProductsByNormalizedName(ctx, "gach", 5)
	require.NoError(t, err)
	_, err = cache.FindActiveProductsByNameContains(ctx, []string{"gach"}, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, backing.calls)
}

func TestCachedCatalog_EmptyResultIsCached(t *testing.T) {
	_, rdb := setupRedis(t)
	backing := &countingCatalog{}
	cache := NewCachedCatalog(backing, rdb, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cache.FindActiveProductsByNameContains(ctx, []string{"Keo"}, 1)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, backing.calls)
}

func TestCachedCatalog_BackingErrorNotCached(t *testing.T) {
	mr, rdb := setupRedis(t)
	backing := &countingCatalog{err: errors.New("db down")}
	cache := NewCachedCatalog(backing, rdb, time.Minute, nil)

	_, err := cache.FindActiveProductsByNameContains(context.Background(), []string{"Cát"}, 1)
	require.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCachedCatalog_RedisDownFallsThrough(t *testing.T) {
	mr, rdb := setupRedis(t)
	backing := &countingCatalog{products: []model.Product{{ID: "p1", Name: "Cát xây dựng"}}}
	cache := NewCachedCatalog(backing, rdb, time.Minute, nil)
	mr.Close()

	got, err := cache.FindActiveProductsByNameContains(context.Background(), []string{"Cát"}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, backing.calls)
}

func TestCachedCatalog_CorruptEntryReloads(t *testing.T) {
	mr, rdb := setupRedis(t)
	backing := &countingCatalog{products: []model.Product{{ID: "p1", Name: "Đá 1x2"}}}
	cache := NewCachedCatalog(backing, rdb, time.Minute, nil)

	require.NoError(t, mr.Set("vlxd:catalog:contains:1:đá", "{not json"))

	got, err := cache.FindActiveProductsByNameContains(context.Background(), []string{"Đá"}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, backing.calls)
}
