package names_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/fieldlens/fieldlens/pkg/domain/types"
	"github.com/fieldlens/fieldlens/pkg/service/names"
)

// listCountingRegistry counts ListNames calls per entity code
type listCountingRegistry struct {
	mu    sync.Mutex
	names map[types.EntityCode]map[string]string
	lists map[types.EntityCode]int
	fail  bool
}

func newListCountingRegistry() *listCountingRegistry {
	return &listCountingRegistry{
		names: map[types.EntityCode]map[string]string{
			"employee": {"e1": "Alice", "e2": "Bob"},
		},
		lists: make(map[types.EntityCode]int),
	}
}

func (r *listCountingRegistry) LookupNames(ctx context.Context, code types.EntityCode, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := r.names[code][id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (r *listCountingRegistry) ListNames(ctx context.Context, code types.EntityCode) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lists[code]++
	if r.fail {
		return nil, goerr.New("registry unavailable")
	}

	out := make(map[string]string, len(r.names[code]))
	for id, name := range r.names[code] {
		out[id] = name
	}
	return out, nil
}

func (r *listCountingRegistry) listCount(code types.EntityCode) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists[code]
}

func (r *listCountingRegistry) setName(code types.EntityCode, id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[code][id] = name
}

func TestCacheLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh snapshot serves without re-listing", func(t *testing.T) {
		registry := newListCountingRegistry()
		cache := names.New(registry, time.Hour)

		out, err := cache.LookupNames(ctx, "employee", []string{"e1", "ghost"})
		gt.NoError(t, err).Required()
		gt.Value(t, out).Equal(map[string]string{"e1": "Alice"})

		_, err = cache.LookupNames(ctx, "employee", []string{"e2"})
		gt.NoError(t, err).Required()

		gt.Value(t, registry.listCount("employee")).Equal(1)
	})

	t.Run("expired snapshot reloads synchronously", func(t *testing.T) {
		registry := newListCountingRegistry()
		cache := names.New(registry, 10*time.Millisecond)

		_, err := cache.LookupNames(ctx, "employee", []string{"e1"})
		gt.NoError(t, err).Required()

		registry.setName("employee", "e1", "Alicia")
		time.Sleep(20 * time.Millisecond)

		out, err := cache.LookupNames(ctx, "employee", []string{"e1"})
		gt.NoError(t, err).Required()
		gt.Value(t, out["e1"]).Equal("Alicia")
	})

	t.Run("load failure surfaces when no snapshot exists", func(t *testing.T) {
		registry := newListCountingRegistry()
		registry.fail = true
		cache := names.New(registry, time.Hour)

		_, err := cache.LookupNames(ctx, "employee", []string{"e1"})
		gt.Error(t, err)
	})
}

func TestCacheListNames(t *testing.T) {
	ctx := context.Background()
	registry := newListCountingRegistry()
	cache := names.New(registry, time.Hour)

	out, err := cache.ListNames(ctx, "employee")
	gt.NoError(t, err).Required()
	gt.Value(t, out).Equal(map[string]string{"e1": "Alice", "e2": "Bob"})

	// The returned map is a copy of the snapshot
	out["e1"] = "mutated"
	again, err := cache.ListNames(ctx, "employee")
	gt.NoError(t, err).Required()
	gt.Value(t, again["e1"]).Equal("Alice")
}

func TestCacheRefresh(t *testing.T) {
	ctx := context.Background()
	registry := newListCountingRegistry()
	cache := names.New(registry, time.Hour)

	_, err := cache.LookupNames(ctx, "employee", []string{"e1"})
	gt.NoError(t, err).Required()

	registry.setName("employee", "e1", "Alicia")
	gt.NoError(t, cache.Refresh(ctx, "employee")).Required()

	out, err := cache.LookupNames(ctx, "employee", []string{"e1"})
	gt.NoError(t, err).Required()
	gt.Value(t, out["e1"]).Equal("Alicia")
	gt.Value(t, registry.listCount("employee")).Equal(2)
}
