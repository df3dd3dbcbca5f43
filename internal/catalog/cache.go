package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Searcher is the subset of the Spotify client the matcher needs.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
}

// CachedSearcher puts a Redis read-through cache in front of a Searcher.
// Cache failures only cost the cache: lookups fall through to the catalog
// and errors are logged, never returned.
type CachedSearcher struct {
	inner Searcher
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedSearcher(inner Searcher, rdb *redis.Client, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedSearcher{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedSearcher) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	key := cacheKey(query, limit)

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Result()
		if err == nil {
			var tracks []Track
			if jsonErr := json.Unmarshal([]byte(raw), &tracks); jsonErr == nil {
				return tracks, nil
			}
			// poisoned entry, drop it and fall through
			c.rdb.Del(ctx, key)
		} else if err != redis.Nil {
			log.Printf("catalog: cache read error: %v", err)
		}
	}

	tracks, err := c.inner.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		data, jsonErr := json.Marshal(tracks)
		if jsonErr == nil {
			if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
				log.Printf("catalog: cache write error: %v", err)
			}
		}
	}
	return tracks, nil
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("catalog:search:%d:%s", limit, strings.ToLower(strings.TrimSpace(query)))
}
