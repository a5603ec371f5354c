// Package detector infers rendering/editing metadata for record fields
// from their naming conventions. Detection is total, pure and
// deterministic: an ordered rule table is evaluated top to bottom and the
// first matching rule wins; keys matching nothing fall back to an
// editable text field.
package detector

import (
	"strings"

	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

// suffix groups used by the rule table
var (
	systemKeys = map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"deleted_at": true,
	}
	currencySuffixes   = []string{"_amount", "_price", "_cost", "_budget", "_salary"}
	percentageSuffixes = []string{"_percent", "_pct", "_rate"}
	booleanPrefixes    = []string{"is_", "has_"}
	booleanSuffixes    = []string{"_flag", "_enabled"}
	arraySuffixes      = []string{"_list", "_tags"}
	jsonSuffixes       = []string{"_json", "_config"}
)

// SettingsPrefix marks fields whose values come from a settings-defined
// option list; they render as badges and edit as selects.
const SettingsPrefix = "choice_"

func hasAnySuffix(key string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(key, s) && len(key) > len(s) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) && len(key) > len(p) {
			return true
		}
	}
	return false
}

// splitReference parses "{label}__{entity}_id(s)" and the bare
// "{entity}_id(s)" form, where label == entity.
func splitReference(key string) (label, entity string, multi, ok bool) {
	var base string
	switch {
	case strings.HasSuffix(key, "_ids"):
		base, multi = key[:len(key)-len("_ids")], true
	case strings.HasSuffix(key, "_id"):
		base = key[:len(key)-len("_id")]
	default:
		return "", "", false, false
	}
	if base == "" {
		return "", "", false, false
	}
	if i := strings.Index(base, "__"); i >= 0 {
		label, entity = base[:i], base[i+2:]
		if label == "" || entity == "" {
			return "", "", false, false
		}
		return label, entity, multi, true
	}
	return base, base, multi, true
}

// visibility helpers
func visibleAll() map[types.Consumer]bool {
	return map[types.Consumer]bool{
		types.ConsumerGrid:   true,
		types.ConsumerForm:   true,
		types.ConsumerDetail: true,
	}
}

func visibleExceptForm() map[types.Consumer]bool {
	return map[types.Consumer]bool{
		types.ConsumerGrid:   true,
		types.ConsumerForm:   false,
		types.ConsumerDetail: true,
	}
}

func visibleNone() map[types.Consumer]bool {
	return map[types.Consumer]bool{
		types.ConsumerGrid:   false,
		types.ConsumerForm:   false,
		types.ConsumerDetail: false,
	}
}

func base(key string) model.FieldMetadata {
	return model.FieldMetadata{
		Key:        key,
		Label:      Label(key),
		Category:   types.CategoryText,
		RenderKind: types.RenderText,
		EditKind:   types.EditText,
		Editable:   true,
		VisibleIn:  visibleAll(),
		Alignment:  types.AlignLeft,
		WidthHint:  200,
	}
}

// Rule is one entry of the ordered detection table. Match and Build are
// pure functions of the key; Build is only called when Match reports true.
type Rule struct {
	Name  string
	Match func(key string) bool
	Build func(key string) model.FieldMetadata
}

// rules is the ordered table. Order is part of the contract: earlier rules
// shadow later ones (audit timestamps are system fields even though they
// carry the timestamp suffix).
var rules = []Rule{
	{
		Name:  "system",
		Match: func(key string) bool { return systemKeys[key] },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategorySystem
			m.RenderKind = types.RenderText
			m.EditKind = types.EditNone
			m.Editable = false
			m.VisibleIn = visibleExceptForm()
			m.WidthHint = 80
			if strings.HasSuffix(key, "_at") {
				m.RenderKind = types.RenderRelativeTime
				m.WidthHint = 160
			}
			return m
		},
	},
	{
		Name: "envelope",
		Match: func(key string) bool {
			return key == model.EnvelopeSingleKey || key == model.EnvelopeMultiKey
		},
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryMetadataEnvelope
			m.RenderKind = types.RenderHidden
			m.EditKind = types.EditNone
			m.Editable = false
			m.VisibleIn = visibleNone()
			m.WidthHint = 0
			return m
		},
	},
	{
		Name:  "currency",
		Match: func(key string) bool { return hasAnySuffix(key, currencySuffixes) },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryCurrency
			m.RenderKind = types.RenderCurrency
			m.EditKind = types.EditNumber
			m.Alignment = types.AlignRight
			m.WidthHint = 120
			return m
		},
	},
	{
		Name:  "settings",
		Match: func(key string) bool { return hasAnyPrefix(key, []string{SettingsPrefix}) },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Label = Label(strings.TrimPrefix(key, SettingsPrefix))
			m.Category = types.CategoryBadge
			m.RenderKind = types.RenderBadge
			m.EditKind = types.EditSelect
			m.SettingsBacked = true
			m.WidthHint = 120
			return m
		},
	},
	{
		Name:  "percentage",
		Match: func(key string) bool { return hasAnySuffix(key, percentageSuffixes) },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryPercentage
			m.RenderKind = types.RenderPercent
			m.EditKind = types.EditNumber
			m.Alignment = types.AlignRight
			m.WidthHint = 100
			return m
		},
	},
	{
		Name:  "date",
		Match: func(key string) bool { return hasAnySuffix(key, []string{"_date"}) },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryDate
			m.RenderKind = types.RenderDate
			m.EditKind = types.EditDate
			m.WidthHint = 140
			return m
		},
	},
	{
		Name:  "timestamp",
		Match: func(key string) bool { return hasAnySuffix(key, []string{"_at"}) },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryTimestamp
			m.RenderKind = types.RenderRelativeTime
			m.EditKind = types.EditNone
			m.Editable = false
			m.VisibleIn = visibleExceptForm()
			m.WidthHint = 160
			return m
		},
	},
	{
		Name: "boolean",
		Match: func(key string) bool {
			return hasAnyPrefix(key, booleanPrefixes) || hasAnySuffix(key, booleanSuffixes)
		},
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryBoolean
			m.RenderKind = types.RenderCheckbox
			m.EditKind = types.EditCheckbox
			m.Alignment = types.AlignCenter
			m.WidthHint = 80
			return m
		},
	},
	{
		Name: "reference",
		Match: func(key string) bool {
			_, _, _, ok := splitReference(key)
			return ok
		},
		Build: func(key string) model.FieldMetadata {
			label, entity, multi, _ := splitReference(key)
			m := base(key)
			m.Label = referenceDisplayLabel(label, entity)
			m.ReferenceTarget = types.EntityCode(entity)
			m.ReferenceLabel = label
			if multi {
				m.Category = types.CategoryReferenceMulti
				m.RenderKind = types.RenderReferences
				m.EditKind = types.EditReferenceMulti
				m.Cardinality = types.CardinalityMulti
				m.WidthHint = 220
			} else {
				m.Category = types.CategoryReferenceSingle
				m.RenderKind = types.RenderReference
				m.EditKind = types.EditReferencePicker
				m.Cardinality = types.CardinalitySingle
				m.WidthHint = 180
			}
			return m
		},
	},
	{
		Name:  "array",
		Match: func(key string) bool { return hasAnySuffix(key, arraySuffixes) || key == "tags" },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryArray
			m.RenderKind = types.RenderTags
			m.EditKind = types.EditTags
			m.WidthHint = 200
			return m
		},
	},
	{
		Name:  "json",
		Match: func(key string) bool { return hasAnySuffix(key, jsonSuffixes) },
		Build: func(key string) model.FieldMetadata {
			m := base(key)
			m.Category = types.CategoryJSON
			m.RenderKind = types.RenderCode
			m.EditKind = types.EditJSON
			m.WidthHint = 240
			return m
		},
	},
}

// RuleNames returns the rule names in evaluation order
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// Detect maps a field key (plus an optional declared value kind) to its
// complete metadata. It never fails: keys matching no rule become plain
// text fields, refined by the declared kind when one is given.
func Detect(key string, declared types.ValueKind) model.FieldMetadata {
	for _, r := range rules {
		if r.Match(key) {
			return r.Build(key)
		}
	}

	m := base(key)
	switch declared {
	case types.ValueNumber:
		m.EditKind = types.EditNumber
		m.Alignment = types.AlignRight
		m.WidthHint = 120
	case types.ValueBool:
		m.Category = types.CategoryBoolean
		m.RenderKind = types.RenderCheckbox
		m.EditKind = types.EditCheckbox
		m.Alignment = types.AlignCenter
		m.WidthHint = 80
	case types.ValueJSON:
		m.Category = types.CategoryJSON
		m.RenderKind = types.RenderCode
		m.EditKind = types.EditJSON
		m.WidthHint = 240
	}
	return m
}
