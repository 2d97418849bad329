package intent

import (
	"slices"
	"strings"
)

// Species enumerates the pet types the catalog distinguishes.
type Species string

// Known species values.
const (
	SpeciesDog  Species = "dog"
	SpeciesCat  Species = "cat"
	SpeciesBird Species = "bird"
	SpeciesFish Species = "fish"
)

// IsValid reports whether the species is one of the known values.
func (s Species) IsValid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesFish:
		return true
	}
	return false
}

// LifeStage enumerates pet life stages.
type LifeStage string

// Known life stage values.
const (
	StagePuppy  LifeStage = "puppy"
	StageAdult  LifeStage = "adult"
	StageSenior LifeStage = "senior"
	StageAll    LifeStage = "all"
)

// SizeCategory enumerates pet size categories (mainly for dogs).
type SizeCategory string

// Known size category values.
const (
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
	SizeAll    SizeCategory = "all"
)

// Intent is a partially-filled constraint record for one turn. Optional
// fields are pointers: nil means "not specified", never a zero sentinel.
type Intent struct {
	Query         string
	Species       *Species
	Exclusions    []string
	Requirements  []string
	PriceMin      *float64
	PriceMax      *float64
	LifeStage     *LifeStage
	SizeCategory  *SizeCategory
	Brand         *string
	ExcludeBrands []string
}

// Normalized returns a copy with exclusion and requirement terms lowercased,
// trimmed and duplicate-free. Term order within each list is preserved.
func (it Intent) Normalized() Intent {
	out := it.Clone()
	out.Exclusions = normalizeTerms(it.Exclusions)
	out.Requirements = normalizeTerms(it.Requirements)
	return out
}

// ResolveConflicts drops requirement terms that are also excluded. A term
// cannot be simultaneously required and excluded for the same turn; exclusion
// wins as the safer interpretation.
func (it Intent) ResolveConflicts() Intent {
	if len(it.Exclusions) == 0 || len(it.Requirements) == 0 {
		return it
	}
	out := it.Clone()
	kept := make([]string, 0, len(it.Requirements))
	for _, req := range it.Requirements {
		if !slices.Contains(it.Exclusions, req) {
			kept = append(kept, req)
		}
	}
	out.Requirements = kept
	return out
}

// HasConstraintTerms reports whether the intent carries any exclusion or
// requirement terms, i.e. whether contrastive composition applies.
func (it Intent) HasConstraintTerms() bool {
	return len(it.Exclusions) > 0 || len(it.Requirements) > 0
}

// Clone returns a deep copy of the intent.
func (it Intent) Clone() Intent {
	out := it
	out.Species = clonePtr(it.Species)
	out.PriceMin = clonePtr(it.PriceMin)
	out.PriceMax = clonePtr(it.PriceMax)
	out.LifeStage = clonePtr(it.LifeStage)
	out.SizeCategory = clonePtr(it.SizeCategory)
	out.Brand = clonePtr(it.Brand)
	out.Exclusions = slices.Clone(it.Exclusions)
	out.Requirements = slices.Clone(it.Requirements)
	out.ExcludeBrands = slices.Clone(it.ExcludeBrands)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func normalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
