package generator

import (
	"github.com/JiarongF/StatsLearning/domain/stimulus"

	lru "github.com/hashicorp/golang-lru/v2"
)

// baseKey identifies one cached base computation.
type baseKey struct {
	seed int64
	n    int
}

// BaseCache is a read-through memo for BuildBase, keyed by (seed, n). It is
// an explicit object rather than package state so tests never leak bases into
// each other. Safe for concurrent use.
type BaseCache struct {
	entries *lru.Cache[baseKey, stimulus.BaseVectors]
}

// DefaultBaseCacheSize comfortably covers the distinct (seed, n) pairs a
// study session touches.
const DefaultBaseCacheSize = 256

// NewBaseCache creates a cache holding up to size bases.
func NewBaseCache(size int) (*BaseCache, error) {
	if size <= 0 {
		size = DefaultBaseCacheSize
	}
	entries, err := lru.New[baseKey, stimulus.BaseVectors](size)
	if err != nil {
		return nil, err
	}
	return &BaseCache{entries: entries}, nil
}

// GetOrBuild returns the cached base for (sampleSize, seed), building and
// storing it on miss.
func (c *BaseCache) GetOrBuild(sampleSize int, seed int64) (stimulus.BaseVectors, error) {
	key := baseKey{seed: seed, n: sampleSize}
	if base, ok := c.entries.Get(key); ok {
		return base, nil
	}
	base, err := BuildBase(sampleSize, seed)
	if err != nil {
		return stimulus.BaseVectors{}, err
	}
	c.entries.Add(key, base)
	return base, nil
}

// Len reports how many bases are currently cached.
func (c *BaseCache) Len() int {
	return c.entries.Len()
}

// Purge empties the cache.
func (c *BaseCache) Purge() {
	c.entries.Purge()
}
