// Package resolver turns raw foreign identifiers in record batches into
// labeled reference structures. All identifiers for one target entity
// code are resolved with a single batched registry lookup, so the number
// of external lookups per batch equals the number of distinct entity
// codes, independent of record count, field count or duplicates.
package resolver

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/detector"
	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
	"github.com/fieldlens/fieldlens/pkg/utils/errutil"
)

// ListSeparator joins identifiers in legacy scalar multi-reference values
const ListSeparator = ","

type Resolver struct {
	registry interfaces.NameRegistry
	cache    *cache.Metadata
}

type Option func(*Resolver)

// WithMetadataCache memoizes field detection across calls. Optional;
// resolution is correct without it.
func WithMetadataCache(c *cache.Metadata) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func New(registry interfaces.NameRegistry, opts ...Option) *Resolver {
	r := &Resolver{registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) detect(key string) model.FieldMetadata {
	return r.cache.GetOrCompute(key, types.ValueUnknown, func() model.FieldMetadata {
		return detector.Detect(key, types.ValueUnknown)
	})
}

// occurrence ties the identifiers found in one record's field to the
// descriptor that owns them
type occurrence struct {
	record int
	desc   *model.ReferenceDescriptor
	ids    []string
}

// Resolve returns one envelope per input record, index-aligned. Records
// may have heterogeneous key sets; a record simply contributes nothing
// for fields it lacks. When declaredKeys is non-empty it replaces the
// key union inferred from the batch.
//
// A failed or timed-out lookup for one entity code degrades only that
// code's entries to the sentinel name; other codes still resolve.
func (r *Resolver) Resolve(ctx context.Context, records []model.Record, declaredKeys []string) ([]model.Envelope, error) {
	for i, rec := range records {
		if rec == nil {
			return nil, goerr.New("malformed batch: record is nil", goerr.V("index", i))
		}
	}

	keys := declaredKeys
	if len(keys) == 0 {
		keys = keyUnion(records)
	}

	var descs []*model.ReferenceDescriptor
	for _, key := range keys {
		meta := r.detect(key)
		if d := meta.ReferenceDescriptor(); d != nil {
			descs = append(descs, d)
		}
	}

	var occurrences []occurrence
	idsByCode := make(map[types.EntityCode][]string)
	seenByCode := make(map[types.EntityCode]map[string]bool)
	for _, d := range descs {
		for idx, rec := range records {
			v, ok := rec[d.SourceFieldKey]
			if !ok {
				continue
			}
			ids := Identifiers(v, d.Cardinality == types.CardinalityMulti)
			if len(ids) == 0 {
				continue
			}
			occurrences = append(occurrences, occurrence{record: idx, desc: d, ids: ids})
			if seenByCode[d.TargetEntity] == nil {
				seenByCode[d.TargetEntity] = make(map[string]bool)
			}
			for _, id := range ids {
				if !seenByCode[d.TargetEntity][id] {
					seenByCode[d.TargetEntity][id] = true
					idsByCode[d.TargetEntity] = append(idsByCode[d.TargetEntity], id)
				}
			}
		}
	}

	names := r.lookupAll(ctx, idsByCode)

	envelopes := make([]model.Envelope, len(records))
	for i := range envelopes {
		envelopes[i] = *model.NewEnvelope()
	}
	for _, occ := range occurrences {
		resolved := names[occ.desc.TargetEntity]
		env := &envelopes[occ.record]
		if occ.desc.Cardinality == types.CardinalityMulti {
			list := make([]model.ReferenceValue, len(occ.ids))
			for j, id := range occ.ids {
				list[j] = referenceValue(occ.desc.TargetEntity, id, resolved)
			}
			env.Multi[occ.desc.Label] = list
		} else {
			env.Single[occ.desc.Label] = referenceValue(occ.desc.TargetEntity, occ.ids[0], resolved)
		}
	}

	return envelopes, nil
}

// lookupAll issues one registry lookup per entity code, concurrently.
// All lookups complete before any result is visible to the caller
// (fan-out, then fan-in). Per-code failures are absorbed: the code is
// simply absent from the result and its entries resolve to the sentinel.
func (r *Resolver) lookupAll(ctx context.Context, idsByCode map[types.EntityCode][]string) map[types.EntityCode]map[string]string {
	names := make(map[types.EntityCode]map[string]string, len(idsByCode))
	if len(idsByCode) == 0 {
		return names
	}

	var mu sync.Mutex
	// Plain group, not WithContext: one code's failure must not cancel
	// the other lookups.
	var g errgroup.Group
	for code, ids := range idsByCode {
		g.Go(func() error {
			resolved, err := r.registry.LookupNames(ctx, code, ids)
			if err != nil {
				errutil.Handle(ctx, err, "name lookup failed, entries degrade to sentinel")
				return nil
			}
			mu.Lock()
			names[code] = resolved
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return names
}

func referenceValue(code types.EntityCode, id string, resolved map[string]string) model.ReferenceValue {
	name, ok := resolved[id]
	if !ok {
		name = model.UnknownName
	}
	return model.ReferenceValue{Entity: code, ID: id, Name: name}
}

// keyUnion collects the union of field keys across the batch in
// first-seen order
func keyUnion(records []model.Record) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// Identifiers extracts the ordered identifier list from a reference field
// value, preserving duplicates. Scalars yield a single-element list. For
// multi-cardinality fields a legacy separator-joined scalar splits into
// its parts; single-cardinality scalars are taken verbatim so the round
// trip stays exact. List values keep string elements and drop anything
// else (shape violations are normalized per field, never escalated).
func Identifiers(v any, multi bool) []string {
	switch vv := v.(type) {
	case nil:
		return nil
	case string:
		if vv == "" {
			return nil
		}
		if multi && strings.Contains(vv, ListSeparator) {
			return splitLegacyList(vv)
		}
		return []string{vv}
	case []string:
		out := make([]string, 0, len(vv))
		for _, id := range vv {
			if id != "" {
				out = append(out, id)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if id, ok := item.(string); ok && id != "" {
				out = append(out, id)
			}
		}
		return out
	default:
		return nil
	}
}

func splitLegacyList(s string) []string {
	parts := strings.Split(s, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
