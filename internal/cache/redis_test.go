package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/device-pass-manager/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := testStruct{Name: "Alice", Age: 30}
	err := cache.Set("passes:device:1", expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get("passes:device:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out testStruct
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("k", testStruct{Name: "x"}, time.Minute))
	require.NoError(t, cache.Invalidate("k"))

	var out testStruct
	found, err := cache.Get("k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRevokeToken(t *testing.T) {
	cache := setupTestCache(t)

	revoked, err := cache.IsTokenRevoked("tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cache.RevokeToken("tok-1", time.Minute))

	revoked, err = cache.IsTokenRevoked("tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Токен с истёкшим сроком жизни не попадает в денилист: он и так невалиден.
	require.NoError(t, cache.RevokeToken("tok-2", -time.Second))
	revoked, err = cache.IsTokenRevoked("tok-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
