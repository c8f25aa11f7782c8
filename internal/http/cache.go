package http

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	cacheTTL     = 60 * time.Second
	cacheMaxCost = 16 << 20 // bytes of cached response bodies
)

// responseCache holds rendered JSON bodies for the read-only analytics and
// insight endpoints. Any write clears the whole cache: entries are cheap to
// rebuild and per-owner invalidation is not worth the bookkeeping.
type responseCache struct {
	cache *ristretto.Cache
}

func newResponseCache() (*responseCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     cacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &responseCache{cache: c}, nil
}

func (c *responseCache) Get(key string) ([]byte, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

func (c *responseCache) Set(key string, body []byte) {
	c.cache.SetWithTTL(key, body, int64(len(body)), cacheTTL)
}

func (c *responseCache) Clear() {
	c.cache.Clear()
}
