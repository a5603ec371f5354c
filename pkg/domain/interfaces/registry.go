package interfaces

import (
	"context"

	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

// NameRegistry resolves foreign identifiers to human-readable names.
//
// Batching policy:
// - LookupNames is the only read path used during resolution; callers must
//   batch all identifiers for one entity code into a single call
// - Unknown identifiers are omitted from the result map, never an error
// - An error means the whole lookup for that entity code failed at the
//   transport/storage level
type NameRegistry interface {
	// LookupNames returns identifier -> name for the identifiers that
	// exist under the given entity code. Missing identifiers are omitted.
	LookupNames(ctx context.Context, code types.EntityCode, ids []string) (map[string]string, error)

	// ListNames returns every identifier -> name pair stored under the
	// given entity code. Used for snapshot warming, not for resolution.
	ListNames(ctx context.Context, code types.EntityCode) (map[string]string, error)
}

// NameWriter is the optional write side of a registry backend
type NameWriter interface {
	// PutNames upserts identifier -> name pairs under an entity code
	PutNames(ctx context.Context, code types.EntityCode, names map[string]string) error
}
