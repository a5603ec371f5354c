package types

// EntityCode is the stable string tag identifying an entity type.
// It is the batching key for name registry lookups.
type EntityCode string

// String returns the string representation of the entity code
func (c EntityCode) String() string {
	return string(c)
}

// FieldCategory represents the inferred category of a record field
type FieldCategory string

const (
	CategorySystem           FieldCategory = "system"
	CategoryMetadataEnvelope FieldCategory = "metadata-envelope"
	CategoryCurrency         FieldCategory = "currency"
	CategoryBadge            FieldCategory = "badge"
	CategoryDate             FieldCategory = "date"
	CategoryTimestamp        FieldCategory = "timestamp"
	CategoryBoolean          FieldCategory = "boolean"
	CategoryPercentage       FieldCategory = "percentage"
	CategoryReferenceSingle  FieldCategory = "reference-single"
	CategoryReferenceMulti   FieldCategory = "reference-multi"
	CategoryArray            FieldCategory = "array"
	CategoryJSON             FieldCategory = "json"
	CategoryText             FieldCategory = "text"
)

// AllFieldCategories returns all valid field categories
func AllFieldCategories() []FieldCategory {
	return []FieldCategory{
		CategorySystem,
		CategoryMetadataEnvelope,
		CategoryCurrency,
		CategoryBadge,
		CategoryDate,
		CategoryTimestamp,
		CategoryBoolean,
		CategoryPercentage,
		CategoryReferenceSingle,
		CategoryReferenceMulti,
		CategoryArray,
		CategoryJSON,
		CategoryText,
	}
}

// IsValid checks if the field category is valid
func (c FieldCategory) IsValid() bool {
	switch c {
	case CategorySystem,
		CategoryMetadataEnvelope,
		CategoryCurrency,
		CategoryBadge,
		CategoryDate,
		CategoryTimestamp,
		CategoryBoolean,
		CategoryPercentage,
		CategoryReferenceSingle,
		CategoryReferenceMulti,
		CategoryArray,
		CategoryJSON,
		CategoryText:
		return true
	default:
		return false
	}
}

// IsReference reports whether the category is one of the reference kinds
func (c FieldCategory) IsReference() bool {
	return c == CategoryReferenceSingle || c == CategoryReferenceMulti
}

// String returns the string representation of the field category
func (c FieldCategory) String() string {
	return string(c)
}

// RenderKind represents how a consumer should render a field value
type RenderKind string

const (
	RenderText         RenderKind = "text"
	RenderCurrency     RenderKind = "currency"
	RenderBadge        RenderKind = "badge"
	RenderDate         RenderKind = "date"
	RenderRelativeTime RenderKind = "relative-time"
	RenderCheckbox     RenderKind = "checkbox"
	RenderPercent      RenderKind = "percent"
	RenderReference    RenderKind = "reference"
	RenderReferences   RenderKind = "reference-list"
	RenderTags         RenderKind = "tags"
	RenderCode         RenderKind = "code"
	RenderHidden       RenderKind = "hidden"
)

// EditKind represents which editor a consumer should offer for a field
type EditKind string

const (
	EditText            EditKind = "text"
	EditNumber          EditKind = "number"
	EditSelect          EditKind = "select"
	EditDate            EditKind = "date"
	EditCheckbox        EditKind = "checkbox"
	EditReferencePicker EditKind = "reference-picker"
	EditReferenceMulti  EditKind = "reference-multi-picker"
	EditTags            EditKind = "tags"
	EditJSON            EditKind = "json"
	EditNone            EditKind = "none"
)

// Alignment represents horizontal alignment in tabular consumers
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

// Cardinality distinguishes single and multi reference fields
type Cardinality string

const (
	CardinalityNone   Cardinality = ""
	CardinalitySingle Cardinality = "single"
	CardinalityMulti  Cardinality = "multi"
)

// Consumer names a rendering surface that receives field metadata
type Consumer string

const (
	ConsumerGrid   Consumer = "grid"
	ConsumerForm   Consumer = "form"
	ConsumerDetail Consumer = "detail"
)

// AllConsumers returns all known consumers
func AllConsumers() []Consumer {
	return []Consumer{ConsumerGrid, ConsumerForm, ConsumerDetail}
}

// ValueKind is an optional declared scalar type for a field.
// It refines detection only when no naming rule matches.
type ValueKind string

const (
	ValueUnknown ValueKind = ""
	ValueString  ValueKind = "string"
	ValueNumber  ValueKind = "number"
	ValueBool    ValueKind = "bool"
	ValueJSON    ValueKind = "json"
)

// IsValid checks if the value kind is valid
func (v ValueKind) IsValid() bool {
	switch v {
	case ValueUnknown, ValueString, ValueNumber, ValueBool, ValueJSON:
		return true
	default:
		return false
	}
}
