// Package cache provides bounded memoization for field metadata
// detection. It is pure memoization: correctness never depends on it, and
// callers must work identically with a nil cache.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

// DefaultCapacity bounds the metadata cache when no capacity is given
const DefaultCapacity = 1024

type metadataKey struct {
	Key      string
	Declared types.ValueKind
}

// Metadata memoizes detector output per (field key, declared kind).
// Eviction is least-recently-used beyond capacity. Safe for concurrent
// use; entries are computed outside any lock and published whole, so a
// partially built entry is never observable.
type Metadata struct {
	entries *lru.Cache[metadataKey, model.FieldMetadata]
}

// NewMetadata creates a metadata cache. Capacity values below 1 fall back
// to DefaultCapacity.
func NewMetadata(capacity int) *Metadata {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	// lru.New only errors on non-positive capacity
	entries, _ := lru.New[metadataKey, model.FieldMetadata](capacity)
	return &Metadata{entries: entries}
}

// GetOrCompute returns the cached metadata for (key, declared), computing
// and inserting it on a miss. A nil receiver degrades to compute-only.
func (c *Metadata) GetOrCompute(key string, declared types.ValueKind, compute func() model.FieldMetadata) model.FieldMetadata {
	if c == nil {
		return compute()
	}
	k := metadataKey{Key: key, Declared: declared}
	if m, ok := c.entries.Get(k); ok {
		return m
	}
	// Detection is deterministic, so racing computes insert equal values.
	m := compute()
	c.entries.Add(k, m)
	return m
}

// Len returns the number of cached entries
func (c *Metadata) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Clear removes every cached entry
func (c *Metadata) Clear() {
	if c == nil {
		return
	}
	c.entries.Purge()
}
