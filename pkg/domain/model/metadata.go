package model

import "github.com/fieldlens/fieldlens/pkg/domain/types"

// FieldMetadata describes how a single record field should be rendered
// and edited. It is derived purely from the field key (plus an optional
// declared value kind) and never mutated once computed.
type FieldMetadata struct {
	Key            string                  `json:"key"`
	Label          string                  `json:"label"`
	Category       types.FieldCategory     `json:"category"`
	RenderKind     types.RenderKind        `json:"render_kind"`
	EditKind       types.EditKind          `json:"edit_kind"`
	Editable       bool                    `json:"editable"`
	VisibleIn      map[types.Consumer]bool `json:"visible_in"`
	Alignment      types.Alignment         `json:"alignment"`
	WidthHint      int                     `json:"width_hint"`
	SettingsBacked bool                    `json:"settings_backed"`

	// Reference fields only
	ReferenceTarget types.EntityCode  `json:"reference_target,omitempty"`
	ReferenceLabel  string            `json:"reference_label,omitempty"`
	Cardinality     types.Cardinality `json:"cardinality,omitempty"`
}

// IsReference reports whether the field points at another entity's records
func (m *FieldMetadata) IsReference() bool {
	return m.Category.IsReference()
}

// VisibleTo reports visibility for a consumer. Unknown consumers see the
// field unless it is the metadata envelope.
func (m *FieldMetadata) VisibleTo(c types.Consumer) bool {
	if v, ok := m.VisibleIn[c]; ok {
		return v
	}
	return m.Category != types.CategoryMetadataEnvelope
}

// ReferenceDescriptor is the reference-only projection of field metadata,
// carrying everything flatten needs to reconstruct the source key.
type ReferenceDescriptor struct {
	Label          string
	TargetEntity   types.EntityCode
	Cardinality    types.Cardinality
	SourceFieldKey string
}

// ReferenceDescriptor returns the descriptor for reference fields,
// or nil for every other category.
func (m *FieldMetadata) ReferenceDescriptor() *ReferenceDescriptor {
	if !m.IsReference() {
		return nil
	}
	return &ReferenceDescriptor{
		Label:          m.ReferenceLabel,
		TargetEntity:   m.ReferenceTarget,
		Cardinality:    m.Cardinality,
		SourceFieldKey: m.Key,
	}
}

// SourceKey reconstructs the flat-record key a descriptor came from:
// "{label}__{entity}_id(s)", or "{entity}_id(s)" when the label equals
// the entity code.
func (d *ReferenceDescriptor) SourceKey() string {
	suffix := "_id"
	if d.Cardinality == types.CardinalityMulti {
		suffix = "_ids"
	}
	if d.Label == d.TargetEntity.String() {
		return d.TargetEntity.String() + suffix
	}
	return d.Label + "__" + d.TargetEntity.String() + suffix
}
