package interfaces

import "github.com/fieldlens/fieldlens/pkg/domain/model/config"

// FieldListProvider supplies declared field lists for datasets whose
// schema should not be inferred from the record batch alone
type FieldListProvider interface {
	// DatasetSchema returns the declared schema for a dataset ID,
	// or nil when the dataset is unknown
	DatasetSchema(id string) *config.DatasetSchema
}
