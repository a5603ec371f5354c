package cache_test

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/detector"
	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

func TestGetOrCompute(t *testing.T) {
	t.Run("computes once per key", func(t *testing.T) {
		c := cache.NewMetadata(8)

		computed := 0
		compute := func() model.FieldMetadata {
			computed++
			return detector.Detect("unit_price", types.ValueUnknown)
		}

		first := c.GetOrCompute("unit_price", types.ValueUnknown, compute)
		second := c.GetOrCompute("unit_price", types.ValueUnknown, compute)

		gt.Value(t, computed).Equal(1)
		gt.Value(t, second).Equal(first)
	})

	t.Run("declared kind is part of the cache key", func(t *testing.T) {
		c := cache.NewMetadata(8)

		c.GetOrCompute("score", types.ValueUnknown, func() model.FieldMetadata {
			return detector.Detect("score", types.ValueUnknown)
		})
		c.GetOrCompute("score", types.ValueNumber, func() model.FieldMetadata {
			return detector.Detect("score", types.ValueNumber)
		})

		gt.Value(t, c.Len()).Equal(2)
	})

	t.Run("nil cache degrades to compute-only", func(t *testing.T) {
		var c *cache.Metadata

		meta := c.GetOrCompute("title", types.ValueUnknown, func() model.FieldMetadata {
			return detector.Detect("title", types.ValueUnknown)
		})

		gt.Value(t, meta.Key).Equal("title")
		gt.Value(t, c.Len()).Equal(0)
	})
}

func TestCapacityBound(t *testing.T) {
	c := cache.NewMetadata(2)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("field_%d", i)
		c.GetOrCompute(key, types.ValueUnknown, func() model.FieldMetadata {
			return detector.Detect(key, types.ValueUnknown)
		})
	}

	gt.Value(t, c.Len()).Equal(2)
}

func TestEviction(t *testing.T) {
	c := cache.NewMetadata(2)

	compute := func(key string) func() model.FieldMetadata {
		return func() model.FieldMetadata {
			return detector.Detect(key, types.ValueUnknown)
		}
	}

	c.GetOrCompute("a", types.ValueUnknown, compute("a"))
	c.GetOrCompute("b", types.ValueUnknown, compute("b"))

	// Touch "a" so "b" becomes the eviction candidate
	c.GetOrCompute("a", types.ValueUnknown, compute("a"))
	c.GetOrCompute("c", types.ValueUnknown, compute("c"))

	recomputed := false
	c.GetOrCompute("a", types.ValueUnknown, func() model.FieldMetadata {
		recomputed = true
		return detector.Detect("a", types.ValueUnknown)
	})
	gt.Bool(t, recomputed).False()
}

func TestClear(t *testing.T) {
	c := cache.NewMetadata(8)

	c.GetOrCompute("title", types.ValueUnknown, func() model.FieldMetadata {
		return detector.Detect("title", types.ValueUnknown)
	})
	gt.Value(t, c.Len()).Equal(1)

	c.Clear()
	gt.Value(t, c.Len()).Equal(0)
}

func TestDefaultCapacity(t *testing.T) {
	// Non-positive capacities fall back to the default instead of failing
	c := cache.NewMetadata(0)

	c.GetOrCompute("title", types.ValueUnknown, func() model.FieldMetadata {
		return detector.Detect("title", types.ValueUnknown)
	})
	gt.Value(t, c.Len()).Equal(1)
}
