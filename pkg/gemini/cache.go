package gemini

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/maypok86/otter/v2"
)

// MemoryCache is an in-process response cache.
type MemoryCache struct {
	cache *otter.Cache[string, []byte]
}

// NewMemoryCache returns a cache holding up to size entries for ttl each.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      size,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](ttl),
		}),
	}
}

func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// Get implements Cache.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	return m.cache.GetIfPresent(hashKey(key))
}

// Set implements Cache.
func (m *MemoryCache) Set(key string, data []byte) {
	m.cache.Set(hashKey(key), data)
}
