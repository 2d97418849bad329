package catalog

import (
	"slices"
	"strings"
)

// flagFields maps recognized high-frequency allergens to the boolean index
// field that marks their presence in a product. Only these exclusions are
// enforced at the index level; everything else relies on the text post-filter.
var flagFields = map[string]string{
	"chicken": "has_chicken",
	"beef":    "has_beef",
	"salmon":  "has_salmon",
	"fish":    "has_fish",
	"grain":   "has_grain",
	"corn":    "has_corn",
	"soy":     "has_soy",
	"dairy":   "has_dairy",
}

// GrainSynonyms are the canonical grain ingredients. A generic "grain"
// constraint is satisfied (or violated) by any of them.
var GrainSynonyms = []string{"grain", "wheat", "corn", "rice", "barley", "oat"}

// FlagField returns the index field for a recognized allergen term.
// Unrecognized terms are not an error: they are simply not index-enforced.
func FlagField(term string) (string, bool) {
	field, ok := flagFields[strings.ToLower(strings.TrimSpace(term))]
	return field, ok
}

// FlagTerms returns all recognized allergen terms in deterministic order.
func FlagTerms() []string {
	terms := make([]string, 0, len(flagFields))
	for term := range flagFields {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}

// AllergenFields returns all flag field names in deterministic order,
// for index schema construction.
func AllergenFields() []string {
	fields := make([]string, 0, len(flagFields))
	for _, f := range flagFields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// HasAllergen reports whether the product contains the given recognized
// allergen. The generic "grain" term matches any grain synonym.
func HasAllergen(p Product, term string) bool {
	text := p.IngredientText()
	if strings.EqualFold(term, "grain") {
		for _, syn := range GrainSynonyms {
			if strings.Contains(text, syn) {
				return true
			}
		}
		return false
	}
	return strings.Contains(text, strings.ToLower(term))
}
