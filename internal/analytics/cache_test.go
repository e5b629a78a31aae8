package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, ttl), mr
}

func sampleEntries() []LeaderboardEntry {
	return []LeaderboardEntry{
		{ID: 1, Name: "Alice Wong", Role: "Consultant", TrustedCount: 2, Score: 20},
		{ID: 2, Name: "Ben Kumar", Role: "KnowledgeChampion", GovernanceActions: 3, Score: 15},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	assert.Nil(t, cache.Get(ctx, nil), "empty cache misses")

	cache.Set(ctx, nil, sampleEntries())

	got := cache.Get(ctx, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice Wong", got[0].Name)
	assert.Equal(t, 20, got[0].Score)
}

func TestCacheKeysPerRegion(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	region := int64(2)
	cache.Set(ctx, &region, sampleEntries()[:1])

	assert.Nil(t, cache.Get(ctx, nil), "region-filtered entry must not serve the unfiltered key")
	require.Len(t, cache.Get(ctx, &region), 1)
}

func TestCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	cache.Set(ctx, nil, sampleEntries())
	require.NotNil(t, cache.Get(ctx, nil))

	mr.FastForward(2 * time.Second)
	assert.Nil(t, cache.Get(ctx, nil))
}

func TestNilClientDisablesCaching(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, nil, sampleEntries())
	assert.Nil(t, cache.Get(ctx, nil))
}
