// Package redis stores cached search responses with a bounded TTL so
// repeated queries do not amplify load (and cost) on the search API.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/braxlabs/facet/internal/tavily"
)

// DefaultSearchTTL is the fallback TTL for cached search responses.
const DefaultSearchTTL = 15 * time.Minute

// SearchCache implements tavily.ResponseCache on top of redis.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache creates a search cache. A non-positive ttl falls back to
// DefaultSearchTTL.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	return &SearchCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached response. A miss returns ok=false with no error.
func (s *SearchCache) Get(ctx context.Context, key string) (*tavily.Response, bool, error) {
	data, err := s.client.Get(ctx, SearchKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get cached search: %w", err)
	}

	var resp tavily.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = s.client.Del(ctx, SearchKey(key)).Err()
		return nil, false, fmt.Errorf("failed to unmarshal cached search: %w", err)
	}
	return &resp, true, nil
}

// Set stores a response under the digest key with the configured TTL.
func (s *SearchCache) Set(ctx context.Context, key string, resp *tavily.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal search response: %w", err)
	}
	if err := s.client.Set(ctx, SearchKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache search response: %w", err)
	}
	return nil
}

// Flush removes all cached search responses.
func (s *SearchCache) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixSearch+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush search cache: %w", err)
	}
	return nil
}
