// Package cache memoizes converted rows. Batch columns repeat values
// heavily and every conversion runs exact rational arithmetic, so a
// hit skips real work.
package cache

import (
	"sync"
)

// Row is one converted value in every rendering the batch writer
// needs. A failed parse is a Row too, with Err set.
type Row struct {
	Bits     string
	Hex      string
	Decimal  string
	Class    string
	Sign     uint8
	Exponent uint64
	Mantissa uint64
	Word     uint64
	Err      string
}

// RowCache is the lookup the converter consults before encoding.
type RowCache interface {
	// Get retrieves a converted row from the cache.
	Get(key string) (Row, bool)
	// Put stores a converted row in the cache.
	Put(key string, row Row)
	// Size returns the number of items in the cache.
	Size() int
}

// MapCache is a simple in-memory implementation of RowCache.
type MapCache struct {
	data map[string]Row
	mu   sync.RWMutex
}

func NewMapCache() *MapCache {
	return &MapCache{
		data: make(map[string]Row),
	}
}

func (c *MapCache) Get(key string) (Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.data[key]
	return row, ok
}

func (c *MapCache) Put(key string, row Row) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = row
}

func (c *MapCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
