package config

import "github.com/fieldlens/fieldlens/pkg/domain/types"

// NameSeed is a development-mode registry entry loaded from configuration
type NameSeed struct {
	ID   string
	Name string
}

// Entity declares an entity type that reference fields may target
type Entity struct {
	Code        types.EntityCode
	Name        string
	Description string
	Seeds       []NameSeed // Only used by the memory registry backend
}

// DeclaredField is one entry of a declared field list, optionally carrying
// the declared scalar kind of the field
type DeclaredField struct {
	Key  string
	Kind types.ValueKind
}

// DatasetSchema is the declared field list for one dataset, used when
// inferring the key union from records alone is undesirable
type DatasetSchema struct {
	ID     string
	Fields []DeclaredField
}

// Keys returns the declared field keys in declaration order
func (s *DatasetSchema) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Schema holds the complete entity and dataset configuration
type Schema struct {
	Entities []Entity
	Datasets []DatasetSchema
}

// EntityCodes returns the configured entity codes in declaration order
func (s *Schema) EntityCodes() []types.EntityCode {
	codes := make([]types.EntityCode, len(s.Entities))
	for i, e := range s.Entities {
		codes[i] = e.Code
	}
	return codes
}

// DatasetSchema returns the declared schema for a dataset ID, or nil.
// Schema satisfies the FieldListProvider collaborator through this.
func (s *Schema) DatasetSchema(id string) *DatasetSchema {
	for i := range s.Datasets {
		if s.Datasets[i].ID == id {
			return &s.Datasets[i]
		}
	}
	return nil
}
