package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardKeyPrefix = "dkn:leaderboard:" // dkn:leaderboard:{region|all}

// Cache keeps recent leaderboard results in Redis. A nil client disables
// caching entirely; lookups then always fall through to Postgres.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(regionID *int64) string {
	if regionID == nil {
		return leaderboardKeyPrefix + "all"
	}
	return fmt.Sprintf("%s%d", leaderboardKeyPrefix, *regionID)
}

// Get returns the cached entries, or nil on miss (or when caching is off).
func (c *Cache) Get(ctx context.Context, regionID *int64) []LeaderboardEntry {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, c.key(regionID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("leaderboard cache get: %v", err)
		return nil
	}

	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		log.Printf("leaderboard cache decode: %v", err)
		return nil
	}
	return entries
}

// Set stores the entries; cache failures are logged, never surfaced.
func (c *Cache) Set(ctx context.Context, regionID *int64, entries []LeaderboardEntry) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		log.Printf("leaderboard cache encode: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.key(regionID), data, c.ttl).Err(); err != nil {
		log.Printf("leaderboard cache set: %v", err)
	}
}
