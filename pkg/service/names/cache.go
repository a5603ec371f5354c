// Package names provides an application-scoped TTL snapshot cache in
// front of a name registry. Resolution traffic is extremely read-heavy
// and names change rarely, so each entity code's full name set is held
// as a snapshot and replaced whole on refresh.
package names

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
	"github.com/fieldlens/fieldlens/pkg/utils/async"
)

// DefaultTTL bounds snapshot staleness when no TTL is configured
const DefaultTTL = time.Minute

type snapshot struct {
	names     map[string]string
	fetchedAt time.Time
}

// Cache decorates a NameRegistry with per-entity-code snapshots.
// A fresh snapshot serves lookups locally; an expired one is refreshed
// synchronously; one past half its TTL is refreshed in the background
// while the current snapshot keeps serving.
type Cache struct {
	registry interfaces.NameRegistry
	ttl      time.Duration

	mu        sync.RWMutex
	snapshots map[types.EntityCode]*snapshot
	inflight  map[types.EntityCode]bool
}

var _ interfaces.NameRegistry = &Cache{}

func New(registry interfaces.NameRegistry, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		registry:  registry,
		ttl:       ttl,
		snapshots: make(map[types.EntityCode]*snapshot),
		inflight:  make(map[types.EntityCode]bool),
	}
}

// LookupNames serves from the snapshot for the entity code, refreshing
// it first when expired. Identifiers missing from the snapshot are
// omitted, matching the registry contract.
func (c *Cache) LookupNames(ctx context.Context, code types.EntityCode, ids []string) (map[string]string, error) {
	snap, err := c.ensureFresh(ctx, code)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := snap.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// ListNames returns a copy of the snapshot for the entity code
func (c *Cache) ListNames(ctx context.Context, code types.EntityCode) (map[string]string, error) {
	snap, err := c.ensureFresh(ctx, code)
	if err != nil {
		return nil, err
	}
	return maps.Clone(snap.names), nil
}

// Refresh forces a snapshot reload for the entity code
func (c *Cache) Refresh(ctx context.Context, code types.EntityCode) error {
	return c.refresh(ctx, code, true)
}

func (c *Cache) ensureFresh(ctx context.Context, code types.EntityCode) (*snapshot, error) {
	c.mu.RLock()
	snap := c.snapshots[code]
	c.mu.RUnlock()

	if snap == nil || time.Since(snap.fetchedAt) > c.ttl {
		if err := c.refresh(ctx, code, false); err != nil {
			return nil, err
		}
	} else if time.Since(snap.fetchedAt) > c.ttl/2 {
		c.refreshAhead(ctx, code)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshots[code], nil
}

// refreshAhead triggers a background refresh so the snapshot rarely
// expires on the request path. At most one refresh per code is in flight.
func (c *Cache) refreshAhead(ctx context.Context, code types.EntityCode) {
	c.mu.Lock()
	if c.inflight[code] {
		c.mu.Unlock()
		return
	}
	c.inflight[code] = true
	c.mu.Unlock()

	async.Dispatch(ctx, func(ctx context.Context) error {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, code)
			c.mu.Unlock()
		}()
		return c.refresh(ctx, code, true)
	})
}

// refresh reloads the snapshot under the write lock, double-checking
// freshness first so concurrent expired-path callers do not issue
// duplicate loads. The snapshot is replaced whole, never mutated.
func (c *Cache) refresh(ctx context.Context, code types.EntityCode, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force {
		if snap := c.snapshots[code]; snap != nil && time.Since(snap.fetchedAt) <= c.ttl {
			return nil
		}
	}

	names, err := c.registry.ListNames(ctx, code)
	if err != nil {
		return goerr.Wrap(err, "failed to list names for snapshot", goerr.V("entityCode", code))
	}

	c.snapshots[code] = &snapshot{names: names, fetchedAt: time.Now()}
	return nil
}
