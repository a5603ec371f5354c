package detector

import "strings"

// acronyms that keep their casing when a key token becomes a label token
var acronyms = map[string]string{
	"id":  "ID",
	"ids": "IDs",
	"url": "URL",
	"api": "API",
}

func capitalize(tok string) string {
	if tok == "" {
		return tok
	}
	if a, ok := acronyms[tok]; ok {
		return a
	}
	return strings.ToUpper(tok[:1]) + tok[1:]
}

// Label converts a snake_case field key into a display label:
// tokens split on "_", each capitalized, joined with spaces.
func Label(key string) string {
	toks := strings.Split(key, "_")
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		if tok == "" {
			continue
		}
		out = append(out, capitalize(tok))
	}
	return strings.Join(out, " ")
}

// referenceDisplayLabel builds the display label for a reference field.
// A token duplicating the referenced entity name collapses, so
// "employee__employee_id" labels as "Employee", not "Employee Employee".
func referenceDisplayLabel(labelPart, entity string) string {
	if labelPart == entity {
		return Label(entity)
	}
	toks := strings.Split(labelPart, "_")
	kept := make([]string, 0, len(toks))
	for _, tok := range toks {
		if tok == entity {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return Label(entity)
	}
	return Label(strings.Join(kept, "_"))
}
