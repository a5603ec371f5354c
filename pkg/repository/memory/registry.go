// Package memory provides an in-memory name registry backend for
// development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/domain/model/config"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

// Registry is a map-backed NameRegistry. Unknown identifiers and unknown
// entity codes are simply omitted from results, never errors.
type Registry struct {
	mu    sync.RWMutex
	names map[types.EntityCode]map[string]string
}

var (
	_ interfaces.NameRegistry = &Registry{}
	_ interfaces.NameWriter   = &Registry{}
)

func New() *Registry {
	return &Registry{
		names: make(map[types.EntityCode]map[string]string),
	}
}

// NewFromSeeds builds a registry pre-populated from configured entities
func NewFromSeeds(entities []config.Entity) *Registry {
	r := New()
	for _, e := range entities {
		for _, seed := range e.Seeds {
			r.put(e.Code, seed.ID, seed.Name)
		}
	}
	return r
}

func (r *Registry) put(code types.EntityCode, id, name string) {
	if r.names[code] == nil {
		r.names[code] = make(map[string]string)
	}
	r.names[code][id] = name
}

// LookupNames returns identifier -> name for identifiers present under
// the entity code, omitting the rest
func (r *Registry) LookupNames(ctx context.Context, code types.EntityCode, ids []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(ids))
	bucket := r.names[code]
	for _, id := range ids {
		if name, ok := bucket[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// ListNames returns a copy of every pair under the entity code
func (r *Registry) ListNames(ctx context.Context, code types.EntityCode) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.names[code]
	out := make(map[string]string, len(bucket))
	for id, name := range bucket {
		out[id] = name
	}
	return out, nil
}

// PutNames upserts identifier -> name pairs under an entity code
func (r *Registry) PutNames(ctx context.Context, code types.EntityCode, names map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, name := range names {
		r.put(code, id, name)
	}
	return nil
}
