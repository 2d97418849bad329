package search

import (
	"strings"

	"github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

// postFilter re-validates candidates against exclusion and requirement terms
// with literal text matching. This is the safety net for imperfect vector
// separation and imperfect metadata flags: a candidate the index let through
// is still rejected here if an excluded term shows up in its ingredients.
//
// Candidates are scanned in arrival order, which the store already ranks by
// similarity; accepted candidates keep that order. Scanning stops once
// maxResults candidates are accepted. A shorter list is returned when the
// over-fetched pool is exhausted; the search never pads with weaker matches.
func postFilter(
	candidates []result.Candidate, exclusions, requirements []string, maxResults int,
) []result.Match {
	matches := make([]result.Match, 0, maxResults)

	for _, cand := range candidates {
		if len(matches) >= maxResults {
			break
		}

		text := cand.Product().IngredientText()

		if violatesExclusion(text, exclusions) {
			continue
		}
		if !satisfiesRequirements(text, requirements) {
			continue
		}

		matches = append(matches, result.NewMatch(cand.Product(), cand.Similarity()))
	}

	return matches
}

// violatesExclusion reports whether any exclusion term appears in the
// ingredient text (case-insensitive substring).
func violatesExclusion(ingredientText string, exclusions []string) bool {
	for _, term := range exclusions {
		if strings.Contains(ingredientText, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// satisfiesRequirements reports whether every requirement term is literally
// present. The generic "grain" requirement is satisfied by any canonical
// grain synonym; all other terms match as plain substrings.
func satisfiesRequirements(ingredientText string, requirements []string) bool {
	for _, term := range requirements {
		if strings.EqualFold(term, "grain") {
			if !containsAny(ingredientText, catalog.GrainSynonyms) {
				return false
			}
			continue
		}
		if !strings.Contains(ingredientText, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
