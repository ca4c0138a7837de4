package compiler

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/sha3"
)

// Fingerprint returns the Keccak-256 hash identifying a compilation of
// source under the settings summarized by settings.
func Fingerprint(source, settings string) common.Hash {
	var h common.Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(settings))
	hasher.Write([]byte{0})
	hasher.Write([]byte(source))
	hasher.Sum(h[:0])
	return h
}

// Cache keeps recent compilation results keyed by fingerprint. It is
// safe for concurrent use. A nil *Cache caches nothing.
type Cache struct {
	results *lru.ARCCache
}

// NewCache returns a cache holding up to size results, or nil when size is
// not positive.
func NewCache(size int) *Cache {
	if size <= 0 {
		return nil
	}
	results, _ := lru.NewARC(size)
	return &Cache{results: results}
}

// Get returns the cached result for key.
func (c *Cache) Get(key common.Hash) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.results.Get(key); ok {
		return v.(*Result), true
	}
	return nil, false
}

// Add stores res under key.
func (c *Cache) Add(key common.Hash, res *Result) {
	if c == nil {
		return
	}
	c.results.Add(key, res)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.results.Len()
}
