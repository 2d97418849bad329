package search

import (
	"fmt"

	"github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/filter"
)

// BuildFilter turns a resolved intent into a conjunctive metadata predicate.
//
// Only exclusions with a precomputed allergen flag become index conditions;
// everything else is left to the text post-filter. Zero conditions yields an
// empty expression (unfiltered retrieval).
func BuildFilter(it intent.Intent) (filter.Expression, error) {
	var must, mustNot []filter.Condition

	if it.Species != nil {
		cond, err := filter.NewMatch("species", string(*it.Species))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("species condition: %w", err)
		}
		must = append(must, cond)
	}

	for _, term := range it.Exclusions {
		field, ok := catalog.FlagField(term)
		if !ok {
			continue
		}
		cond, err := filter.NewMatch(field, "0")
		if err != nil {
			return filter.Expression{}, fmt.Errorf("allergen condition %q: %w", term, err)
		}
		must = append(must, cond)
	}

	if it.PriceMin != nil || it.PriceMax != nil {
		rng, err := filter.NewRangeFilter(it.PriceMin, it.PriceMax)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("price range: %w", err)
		}
		cond, err := filter.NewRange("price", rng)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("price condition: %w", err)
		}
		must = append(must, cond)
	}

	if it.Brand != nil {
		cond, err := filter.NewMatch("brand", *it.Brand)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("brand condition: %w", err)
		}
		must = append(must, cond)
	}

	for _, brand := range it.ExcludeBrands {
		cond, err := filter.NewMatch("brand", brand)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("brand exclusion %q: %w", brand, err)
		}
		mustNot = append(mustNot, cond)
	}

	if it.LifeStage != nil {
		cond, err := filter.NewMatch("life_stage", string(*it.LifeStage))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("life stage condition: %w", err)
		}
		must = append(must, cond)
	}

	if it.SizeCategory != nil {
		cond, err := filter.NewMatch("size_category", string(*it.SizeCategory))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("size category condition: %w", err)
		}
		must = append(must, cond)
	}

	expr, err := filter.NewExpression(must, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build expression: %w", err)
	}
	return expr, nil
}
