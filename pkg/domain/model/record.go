package model

import (
	"maps"

	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

const (
	// EnvelopeSingleKey and EnvelopeMultiKey are the two reserved record
	// keys carrying resolved references on an enriched record. They never
	// appear on a flat record.
	EnvelopeSingleKey = "single_refs"
	EnvelopeMultiKey  = "multi_refs"

	// UnknownName is the sentinel label attached to identifiers the
	// name registry could not resolve.
	UnknownName = "Unknown"
)

// Record is a flat data record: scalar or array values keyed by string.
type Record map[string]any

// Clone returns a shallow-key deep-value copy of the record. Array values
// are copied so callers can mutate the clone freely.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		switch vv := v.(type) {
		case []string:
			s := make([]string, len(vv))
			copy(s, vv)
			out[k] = s
		case []any:
			s := make([]any, len(vv))
			copy(s, vv)
			out[k] = s
		case Record:
			out[k] = vv.Clone()
		case map[string]any:
			out[k] = maps.Clone(vv)
		default:
			out[k] = v
		}
	}
	return out
}

// ReferenceValue is a resolved reference: the raw foreign identifier plus
// the human-readable name looked up from the registry. The identifier is
// never mutated by resolution.
type ReferenceValue struct {
	Entity types.EntityCode `json:"entity"`
	ID     string           `json:"id"`
	Name   string           `json:"name"`
}

// Envelope holds the resolved references for one record, keyed by the
// snake-case label of the source field. It is built fresh per response
// and discarded after the consumer reads it or flattens the record.
type Envelope struct {
	Single map[string]ReferenceValue   `json:"single_refs"`
	Multi  map[string][]ReferenceValue `json:"multi_refs"`
}

// NewEnvelope returns an empty envelope with both maps allocated
func NewEnvelope() *Envelope {
	return &Envelope{
		Single: make(map[string]ReferenceValue),
		Multi:  make(map[string][]ReferenceValue),
	}
}

// Empty reports whether the envelope carries no resolved references
func (e *Envelope) Empty() bool {
	return e == nil || (len(e.Single) == 0 && len(e.Multi) == 0)
}

// DataSet is the payload handed to rendering consumers: enriched records
// plus the metadata for every field appearing in them. Consumers must
// flatten records before sending them back through any write path.
type DataSet struct {
	Data   []Record        `json:"data"`
	Fields []FieldMetadata `json:"fields"`
}
