//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bruzethegreat/url-shortener/internal/domain"
	redisrepo "github.com/bruzethegreat/url-shortener/internal/repository/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func testShortURL(shortCode string) *domain.ShortURL {
	now := time.Now().Truncate(time.Second)
	return &domain.ShortURL{
		ID:              "id-" + shortCode,
		OriginalURL:     "https://example.com",
		ShortCode:       shortCode,
		ShortLink:       "http://localhost:8080/" + shortCode,
		CreatedAt:       now,
		ExpiresAt:       now.Add(30 * time.Minute),
		ValidityMinutes: 30,
		IsActive:        true,
	}
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testShortURL("abc123")))

	result, err := store.GetByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.ShortCode)
	assert.Equal(t, "https://example.com", result.OriginalURL)
	assert.True(t, result.IsActive)
	assert.Empty(t, result.Clicks)
}

func TestRedisStore_Create_Duplicate(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testShortURL("abc123")))

	err := store.Create(ctx, testShortURL("abc123"))
	assert.ErrorIs(t, err, domain.ErrShortCodeExists)
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)

	_, err := store.GetByShortCode(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrShortCodeNotFound)
}

func TestRedisStore_AppendClick_OrderPreserved(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testShortURL("abc123")))

	for i := 0; i < 5; i++ {
		click := &domain.ClickEvent{
			ID:        fmt.Sprintf("click-%d", i),
			ShortCode: "abc123",
			Timestamp: time.Now(),
			Referrer:  "direct",
			Location:  "Unknown",
		}
		require.NoError(t, store.AppendClick(ctx, "abc123", click))
	}

	result, err := store.GetByShortCode(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, result.Clicks, 5)

	for i, click := range result.Clicks {
		assert.Equal(t, fmt.Sprintf("click-%d", i), click.ID)
	}
}

func TestRedisStore_AppendClick_UnknownShortCode(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)

	err := store.AppendClick(context.Background(), "missing", &domain.ClickEvent{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrShortCodeNotFound)
}

func TestRedisStore_List(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testShortURL("one")))
	require.NoError(t, store.Create(ctx, testShortURL("two")))

	urls, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestRedisStore_Ping(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := redisrepo.New(client)
	assert.NoError(t, store.Ping(context.Background()))
}
