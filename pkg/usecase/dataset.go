package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/detector"
	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/model/config"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
	"github.com/fieldlens/fieldlens/pkg/transform"
)

// DatasetUseCase composes detection, resolution and transformation into
// the consumer-facing operations
type DatasetUseCase struct {
	engine    *transform.Engine
	metaCache *cache.Metadata
	schema    interfaces.FieldListProvider
}

func NewDatasetUseCase(engine *transform.Engine, metaCache *cache.Metadata, schema interfaces.FieldListProvider) *DatasetUseCase {
	return &DatasetUseCase{
		engine:    engine,
		metaCache: metaCache,
		schema:    schema,
	}
}

func (uc *DatasetUseCase) detect(key string, declared types.ValueKind) model.FieldMetadata {
	return uc.metaCache.GetOrCompute(key, declared, func() model.FieldMetadata {
		return detector.Detect(key, declared)
	})
}

// declaredFields returns the declared field list for the dataset, or nil
// when the dataset is unknown and the key union should be used
func (uc *DatasetUseCase) declaredFields(datasetID string) []config.DeclaredField {
	if uc.schema == nil || datasetID == "" {
		return nil
	}
	ds := uc.schema.DatasetSchema(datasetID)
	if ds == nil {
		return nil
	}
	return ds.Fields
}

// EnrichDataset enriches a record batch and returns it together with the
// metadata of every field, as consumed by rendering layers. The envelope
// keys carry non-tabular structure and are not listed as fields.
func (uc *DatasetUseCase) EnrichDataset(ctx context.Context, records []model.Record, datasetID string) (*model.DataSet, error) {
	declared := uc.declaredFields(datasetID)

	var keys []string
	kinds := make(map[string]types.ValueKind, len(declared))
	if len(declared) > 0 {
		keys = make([]string, len(declared))
		for i, f := range declared {
			keys[i] = f.Key
			kinds[f.Key] = f.Kind
		}
	} else {
		keys = sortedKeyUnion(records)
	}

	data, err := uc.engine.EnrichBatch(ctx, records, keys)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to enrich dataset", goerr.V("dataset", datasetID))
	}

	fields := make([]model.FieldMetadata, 0, len(keys))
	for _, key := range keys {
		if key == model.EnvelopeSingleKey || key == model.EnvelopeMultiKey {
			continue
		}
		fields = append(fields, uc.detect(key, kinds[key]))
	}

	return &model.DataSet{Data: data, Fields: fields}, nil
}

// EnrichRecord is the single-record convenience wrapper
func (uc *DatasetUseCase) EnrichRecord(ctx context.Context, record model.Record) (model.Record, error) {
	return uc.engine.Enrich(ctx, record)
}

// FlattenRecords restores identifier-only records suitable as write-path
// input
func (uc *DatasetUseCase) FlattenRecords(ctx context.Context, records []model.Record) ([]model.Record, error) {
	flattened, err := uc.engine.FlattenBatch(records)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to flatten records")
	}
	return flattened, nil
}

// FieldMetadata returns metadata for the given keys in input order
func (uc *DatasetUseCase) FieldMetadata(keys []string) []model.FieldMetadata {
	out := make([]model.FieldMetadata, len(keys))
	for i, key := range keys {
		out[i] = uc.detect(key, types.ValueUnknown)
	}
	return out
}

// sortedKeyUnion is the deterministic field list when no schema is
// declared: the union of keys across the batch, sorted
func sortedKeyUnion(records []model.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
