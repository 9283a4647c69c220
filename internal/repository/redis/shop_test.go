package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"

	"github.com/daffodeal/marketplace/internal/domain"
)

type countingShopRepo struct {
	shops map[string]*domain.Shop
	calls int
}

func (r *countingShopRepo) GetByID(_ context.Context, id string) (*domain.Shop, error) {
	r.calls++
	shop, ok := r.shops[id]
	if !ok {
		return nil, apperrors.NotFound("shop", id)
	}
	cpy := *shop
	return &cpy, nil
}

func setupCache(t *testing.T) (*ShopCache, *countingShopRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := &countingShopRepo{shops: map[string]*domain.Shop{
		"s-1": {ID: "s-1", Name: "Daffo", Email: "s@daffodeal.io", Role: "Seller"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewShopCache(repo, client, time.Minute, logger), repo, mr
}

func TestShopCache_MissLoadsAndStores(t *testing.T) {
	cache, repo, mr := setupCache(t)

	shop, err := cache.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Daffo", shop.Name)
	assert.Equal(t, 1, repo.calls)

	raw, err := mr.Get("marketplace:shop:s-1")
	require.NoError(t, err)
	var cached domain.Shop
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "s@daffodeal.io", cached.Email)
	assert.Equal(t, time.Minute, mr.TTL("marketplace:shop:s-1"))
}

func TestShopCache_HitSkipsRepository(t *testing.T) {
	cache, repo, _ := setupCache(t)

	_, err := cache.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	_, err = cache.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestShopCache_NotFoundIsNotCached(t *testing.T) {
	cache, repo, mr := setupCache(t)

	_, err := cache.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, mr.Exists("marketplace:shop:missing"))

	_, _ = cache.GetByID(context.Background(), "missing")
	assert.Equal(t, 2, repo.calls)
}

func TestShopCache_CorruptEntryFallsThrough(t *testing.T) {
	cache, repo, mr := setupCache(t)
	require.NoError(t, mr.Set("marketplace:shop:s-1", "{not json"))

	shop, err := cache.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Daffo", shop.Name)
	assert.Equal(t, 1, repo.calls)
}

func TestShopCache_RedisDownFallsThrough(t *testing.T) {
	cache, repo, mr := setupCache(t)
	mr.Close()

	shop, err := cache.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Daffo", shop.Name)
	assert.Equal(t, 1, repo.calls)
}
