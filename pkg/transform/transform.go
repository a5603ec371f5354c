// Package transform composes resolver output into enrichment envelopes
// and performs the inverse. Enrich and Flatten are exact inverses for
// records whose reference fields hold only identifiers: no data is lost
// across the enrich -> edit -> flatten cycle.
package transform

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/detector"
	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
	"github.com/fieldlens/fieldlens/pkg/resolver"
)

type Engine struct {
	resolver *resolver.Resolver
	cache    *cache.Metadata
}

type Option func(*Engine)

// WithMetadataCache memoizes field detection across calls
func WithMetadataCache(c *cache.Metadata) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

func New(res *resolver.Resolver, opts ...Option) *Engine {
	e := &Engine{resolver: res}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) detect(key string) model.FieldMetadata {
	return e.cache.GetOrCompute(key, types.ValueUnknown, func() model.FieldMetadata {
		return detector.Detect(key, types.ValueUnknown)
	})
}

// EnrichBatch resolves every reference field in the batch and attaches
// the envelope maps to each record. Reference source keys holding at
// least one identifier move into the envelope; all other keys pass
// through untouched. The batch is enriched as a whole: either every
// record comes back enriched or the call fails.
func (e *Engine) EnrichBatch(ctx context.Context, records []model.Record, declaredKeys []string) ([]model.Record, error) {
	envelopes, err := e.resolver.Resolve(ctx, records, declaredKeys)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve references for batch")
	}

	out := make([]model.Record, len(records))
	for i, rec := range records {
		out[i] = e.attach(rec, &envelopes[i])
	}
	return out, nil
}

// Enrich is the single-record convenience wrapper over EnrichBatch
func (e *Engine) Enrich(ctx context.Context, record model.Record) (model.Record, error) {
	enriched, err := e.EnrichBatch(ctx, []model.Record{record}, nil)
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

// attach moves resolved reference fields into the envelope maps on a copy
// of the record. Both envelope keys are always present on an enriched
// record so consumers get a stable shape.
func (e *Engine) attach(rec model.Record, env *model.Envelope) model.Record {
	out := rec.Clone()
	for label, rv := range env.Single {
		d := model.ReferenceDescriptor{
			Label:        label,
			TargetEntity: rv.Entity,
			Cardinality:  types.CardinalitySingle,
		}
		delete(out, d.SourceKey())
	}
	for label, list := range env.Multi {
		if len(list) == 0 {
			continue
		}
		d := model.ReferenceDescriptor{
			Label:        label,
			TargetEntity: list[0].Entity,
			Cardinality:  types.CardinalityMulti,
		}
		delete(out, d.SourceKey())
	}
	out[model.EnvelopeSingleKey] = env.Single
	out[model.EnvelopeMultiKey] = env.Multi
	return out
}

// FlattenBatch flattens each record; a nil record in the batch is the
// only hard failure (malformed input)
func (e *Engine) FlattenBatch(records []model.Record) ([]model.Record, error) {
	out := make([]model.Record, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, goerr.New("malformed batch: record is nil", goerr.V("index", i))
		}
		out[i] = e.Flatten(rec)
	}
	return out, nil
}

// Flatten restores the identifier-only representation of an enriched
// record: every envelope entry is written back to its reconstructed
// source key with the raw identifier(s), resolved names are discarded,
// and the envelope keys are removed. Non-reference keys pass through,
// except that empty-string reference scalars normalize to nil and legacy
// separator-joined scalars of array-typed fields become proper lists.
// Shape violations are normalized per field and never fail the record.
func (e *Engine) Flatten(record model.Record) model.Record {
	out := make(model.Record, len(record))
	for key, v := range record {
		if key == model.EnvelopeSingleKey || key == model.EnvelopeMultiKey {
			continue
		}
		out[key] = e.normalize(key, v)
	}

	for label, rv := range singleEntries(record[model.EnvelopeSingleKey]) {
		if rv.ID == "" || rv.Entity == "" {
			continue
		}
		d := model.ReferenceDescriptor{
			Label:        label,
			TargetEntity: rv.Entity,
			Cardinality:  types.CardinalitySingle,
		}
		out[d.SourceKey()] = rv.ID
	}

	for label, list := range multiEntries(record[model.EnvelopeMultiKey]) {
		ids := make([]string, 0, len(list))
		var entity types.EntityCode
		for _, rv := range list {
			if rv.ID == "" || rv.Entity == "" {
				continue
			}
			entity = rv.Entity
			ids = append(ids, rv.ID)
		}
		if len(ids) == 0 {
			continue
		}
		d := model.ReferenceDescriptor{
			Label:        label,
			TargetEntity: entity,
			Cardinality:  types.CardinalityMulti,
		}
		out[d.SourceKey()] = ids
	}

	return out
}

// normalize applies flatten-time value normalization driven by the
// field's detected metadata
func (e *Engine) normalize(key string, v any) any {
	meta := e.detect(key)
	switch {
	case meta.IsReference():
		if s, ok := v.(string); ok && s == "" {
			return nil
		}
	case meta.Category == types.CategoryArray:
		if s, ok := v.(string); ok && s != "" {
			return resolver.Identifiers(s, true)
		}
	}
	return v
}

// singleEntries reads the single-reference envelope map off a record,
// accepting both the typed in-process shape and the decoded JSON shape
func singleEntries(v any) map[string]model.ReferenceValue {
	switch vv := v.(type) {
	case nil:
		return nil
	case map[string]model.ReferenceValue:
		return vv
	case map[string]any:
		out := make(map[string]model.ReferenceValue, len(vv))
		for label, item := range vv {
			if rv, ok := toReferenceValue(item); ok {
				out[label] = rv
			}
		}
		return out
	default:
		return nil
	}
}

// multiEntries reads the multi-reference envelope map off a record
func multiEntries(v any) map[string][]model.ReferenceValue {
	switch vv := v.(type) {
	case nil:
		return nil
	case map[string][]model.ReferenceValue:
		return vv
	case map[string]any:
		out := make(map[string][]model.ReferenceValue, len(vv))
		for label, item := range vv {
			items, ok := item.([]any)
			if !ok {
				continue
			}
			list := make([]model.ReferenceValue, 0, len(items))
			for _, raw := range items {
				if rv, ok := toReferenceValue(raw); ok {
					list = append(list, rv)
				}
			}
			out[label] = list
		}
		return out
	default:
		return nil
	}
}

func toReferenceValue(v any) (model.ReferenceValue, bool) {
	switch vv := v.(type) {
	case model.ReferenceValue:
		return vv, true
	case map[string]any:
		rv := model.ReferenceValue{}
		if s, ok := vv["entity"].(string); ok {
			rv.Entity = types.EntityCode(s)
		}
		if s, ok := vv["id"].(string); ok {
			rv.ID = s
		}
		if s, ok := vv["name"].(string); ok {
			rv.Name = s
		}
		return rv, true
	default:
		return model.ReferenceValue{}, false
	}
}
