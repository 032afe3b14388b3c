// Package cache keeps search results in Redis between loads.
//
// Entries are namespaced by a generation counter. A load bumps the counter,
// which orphans every cached result at once; orphans expire through their TTL.
// Callers resolve a key once per search and use it for both Get and Set, so
// rows read before a load can only land in the generation the load retired.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "orgdir:search"
	generationKey = keyPrefix + ":generation"
)

type SearchCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSearchCache returns a cache storing entries for ttl.
// A zero ttl keeps entries until the next invalidation.
func NewSearchCache(client redis.Cmdable, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

func (c *SearchCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("read search cache generation: %w", err)
	}
	return gen, nil
}

// Key returns the entry key for term under the current generation.
func (c *SearchCache) Key(ctx context.Context, term string) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(term))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, gen, hex.EncodeToString(sum[:])), nil
}

// Get returns the results stored under key. The bool is false on a miss.
func (c *SearchCache) Get(ctx context.Context, key string) ([]model.PersonRecord, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read search cache: %w", err)
	}

	var results []model.PersonRecord
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("decode cached search results: %w", err)
	}
	return results, true, nil
}

func (c *SearchCache) Set(ctx context.Context, key string, results []model.PersonRecord) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode search results: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write search cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached result by moving to a new generation.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("invalidate search cache: %w", err)
	}
	return nil
}
