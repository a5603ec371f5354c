package usecase

import (
	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/resolver"
	"github.com/fieldlens/fieldlens/pkg/transform"
)

type UseCases struct {
	registry  interfaces.NameRegistry
	schema    interfaces.FieldListProvider
	metaCache *cache.Metadata

	Dataset *DatasetUseCase
}

type Option func(*UseCases)

// WithFieldListProvider supplies declared field lists per dataset,
// replacing key-union inference for known datasets
func WithFieldListProvider(p interfaces.FieldListProvider) Option {
	return func(uc *UseCases) {
		uc.schema = p
	}
}

// WithMetadataCache shares one bounded metadata cache across requests.
// Without it every request detects cold; behavior is identical.
func WithMetadataCache(c *cache.Metadata) Option {
	return func(uc *UseCases) {
		uc.metaCache = c
	}
}

func New(registry interfaces.NameRegistry, opts ...Option) *UseCases {
	uc := &UseCases{
		registry: registry,
	}

	for _, opt := range opts {
		opt(uc)
	}

	res := resolver.New(registry, resolver.WithMetadataCache(uc.metaCache))
	engine := transform.New(res, transform.WithMetadataCache(uc.metaCache))
	uc.Dataset = NewDatasetUseCase(engine, uc.metaCache, uc.schema)

	return uc
}
