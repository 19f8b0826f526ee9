package files

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisLookup_ResolveURL(t *testing.T) {
	ms, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	defer ms.Close()

	client := redis.NewClient(&redis.Options{Addr: ms.Addr()})
	defer client.Close()
	ms.HSet(FilesKey, "42", "files/banner.png")
	ms.HSet(FilesKey, "43", "/files/other.png")

	lookup := NewRedisLookup(client, "https://cdn.example.com/", zap.NewNop())
	ctx := context.Background()

	url, ok := lookup.ResolveURL(ctx, "42")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/files/banner.png", url)

	// Stored paths with a leading slash are not double-slashed.
	url, ok = lookup.ResolveURL(ctx, "43")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/files/other.png", url)

	_, ok = lookup.ResolveURL(ctx, "99")
	assert.False(t, ok, "unknown reference should miss")

	_, ok = lookup.ResolveURL(ctx, "")
	assert.False(t, ok, "empty reference should miss")
}

func TestRedisLookup_DegradesOnFailure(t *testing.T) {
	ms, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: ms.Addr()})
	defer client.Close()
	ms.Close()

	lookup := NewRedisLookup(client, "https://cdn.example.com", zap.NewNop())
	_, ok := lookup.ResolveURL(context.Background(), "42")
	assert.False(t, ok, "lookup against a down redis should miss, not fail")
}

func TestStaticLookup(t *testing.T) {
	lookup := StaticLookup{"1": "https://example.com/a.png"}

	url, ok := lookup.ResolveURL(context.Background(), "1")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a.png", url)

	_, ok = lookup.ResolveURL(context.Background(), "2")
	assert.False(t, ok)
}
