package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

const quoteKeyPrefix = "quote:"

// QuoteCache is a read-through Redis cache for quotes. Quotes are immutable
// and carry a fixed validity window, so the cache entry's TTL mirrors the
// quote's validUntil and entries evict themselves when the quote expires.
//
// The cache is an optimization only: callers fall back to the quote
// repository on a miss or on any Redis error.
type QuoteCache struct {
	client *redis.Client
}

// NewQuoteCache creates a new QuoteCache
func NewQuoteCache(client *redis.Client) *QuoteCache {
	return &QuoteCache{client: client}
}

// Set stores a quote with a TTL matching its remaining validity. Quotes that
// are already expired are not written.
func (c *QuoteCache) Set(ctx context.Context, quote *models.Quote, now time.Time) error {
	ttl := quote.ValidUntil.Sub(now)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	key := quoteKeyPrefix + quote.ID.String()
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

// Get returns the cached quote, or nil on a miss.
func (c *QuoteCache) Get(ctx context.Context, quoteID string) (*models.Quote, error) {
	payload, err := c.client.Get(ctx, quoteKeyPrefix+quoteID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var quote models.Quote
	if err := json.Unmarshal(payload, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached quote: %w", err)
	}
	return &quote, nil
}
