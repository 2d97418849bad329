package session

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

const (
	// CheaperRatio scales the previous result set's mean price down into a
	// price ceiling when the turn asks for cheaper options.
	CheaperRatio = 0.8

	// PricierRatio scales the mean up into a price floor for premium asks.
	PricierRatio = 1.2
)

// Resolver rewrites a turn's parsed intent using the session context and
// the cue flags classified from the raw text. Resolve is read-only with
// respect to the context; Commit applies the post-search update.
type Resolver struct {
	cues   Classifier
	logger *zap.Logger
}

// NewResolver creates a resolver with the given cue classifier.
func NewResolver(cues Classifier, logger *zap.Logger) *Resolver {
	return &Resolver{cues: cues, logger: logger}
}

// Resolve returns the intent enriched with context carry-over. The four
// transitions are independent; any combination can fire on one turn:
//
//   - cheaper: price ceiling becomes CheaperRatio times the mean price of
//     the last results, overriding any ceiling parsed from the turn itself;
//   - pricier: price floor becomes PricierRatio times the same mean;
//   - species inheritance: a turn without a species keeps the session's;
//   - additive exclusions: "also without X" unions the accumulated
//     exclusion set into the turn's own, so earlier constraints keep holding;
//   - different brand: the brands shown last turn become brand exclusions.
//
// Price transitions are no-ops when no previous results exist, because
// "cheaper than nothing" has no anchor.
func (r *Resolver) Resolve(sc *Context, text string, it intent.Intent) intent.Intent {
	cues := r.cues.Classify(text)
	resolved := it.Clone()

	if mean, ok := sc.MeanLastPrice(); ok {
		if cues.Cheaper {
			ceiling := CheaperRatio * mean
			resolved.PriceMax = &ceiling
			resolved.PriceMin = nil
		}
		if cues.Pricier {
			floor := PricierRatio * mean
			resolved.PriceMin = &floor
			resolved.PriceMax = nil
		}
	}

	if resolved.Species == nil && sc.Species() != nil {
		sp := *sc.Species()
		resolved.Species = &sp
	}

	if cues.Additive {
		resolved.Exclusions = unionTerms(sc.Exclusions(), resolved.Exclusions)
	}

	if cues.DifferentBrand && len(sc.LastBrands()) > 0 {
		resolved.ExcludeBrands = unionTerms(resolved.ExcludeBrands, sc.LastBrands())
	}

	if r.logger != nil {
		r.logger.Debug("intent resolved",
			zap.Bool("cheaper", cues.Cheaper),
			zap.Bool("pricier", cues.Pricier),
			zap.Bool("additive", cues.Additive),
			zap.Bool("different_brand", cues.DifferentBrand),
			zap.Strings("exclusions", resolved.Exclusions),
		)
	}

	return resolved
}

// Commit folds a completed turn into the session context. It runs only after
// the search finished, successfully or with an empty result; a failed search
// never reaches Commit, so the context reflects only searches that ran.
//
// Exclusions accumulate unconditionally here even when the additive cue was
// absent, so a later "also without X" turn can pick them all up. Brands are
// replaced, not accumulated: "different brands" means different from the
// ones just shown, not from every brand ever shown. The price window is
// replaced only when the turn carries a bound; a follow-up without one keeps
// the window already in effect.
func (r *Resolver) Commit(sc *Context, text string, it intent.Intent, results []result.Match) {
	sc.addTurn("user", text)
	sc.addTurn("assistant", fmt.Sprintf("Found %d products", len(results)))

	if it.Species != nil {
		sp := *it.Species
		sc.species = &sp
	}
	sc.unionExclusions(it.Exclusions)
	if it.PriceMin != nil || it.PriceMax != nil {
		sc.priceMin = clonePrice(it.PriceMin)
		sc.priceMax = clonePrice(it.PriceMax)
	}

	sc.lastResults = slices.Clone(results)
	sc.lastBrands = sc.lastBrands[:0]
	for _, m := range results {
		brand := strings.TrimSpace(m.Product().Brand)
		if brand == "" || slices.Contains(sc.lastBrands, brand) {
			continue
		}
		sc.lastBrands = append(sc.lastBrands, brand)
	}
}

// unionTerms merges b into a, preserving order and skipping duplicates
// case-insensitively.
func unionTerms(a, b []string) []string {
	out := slices.Clone(a)
	for _, t := range b {
		if !containsFold(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(terms []string, term string) bool {
	for _, t := range terms {
		if strings.EqualFold(t, term) {
			return true
		}
	}
	return false
}

func clonePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
