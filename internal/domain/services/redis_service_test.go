package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, InterfaceRedisService) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisServiceWithClient(client)
}

func TestRedisService_SetGet(t *testing.T) {
	mr, svc := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, svc.Set(ctx, "overview", payload{Name: "Harbour View", Count: 12}, time.Minute))

	var got payload
	require.NoError(t, svc.Get(ctx, "overview", &got))
	assert.Equal(t, "Harbour View", got.Name)
	assert.Equal(t, 12, got.Count)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, svc.Get(ctx, "overview", &got), ErrCacheMiss)
}

func TestRedisService_DeletePrefix(t *testing.T) {
	mr, svc := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "property-data:all", 1, 0))
	require.NoError(t, svc.Set(ctx, "property-data:3", 2, 0))
	require.NoError(t, svc.Set(ctx, "other", 3, 0))

	removed, err := svc.DeletePrefix(ctx, "property-data:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, mr.Exists("other"))
	assert.False(t, mr.Exists("property-data:3"))

	require.NoError(t, svc.Delete(ctx, "other"))
	assert.False(t, mr.Exists("other"))
	require.NoError(t, svc.Ping(ctx))
}
