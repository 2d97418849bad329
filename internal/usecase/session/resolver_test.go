package session

import (
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

func newResolver() *Resolver {
	return NewResolver(NewKeywordClassifier(), zap.NewNop())
}

func committedContext(t *testing.T, it intent.Intent, results []result.Match) *Context {
	t.Helper()
	sc := NewContext()
	newResolver().Commit(sc, "initial turn", it, results)
	return sc
}

func matchWithPrice(price float64) result.Match {
	return result.NewMatch(catalog.Product{Price: price}, 0.9)
}

func TestResolve_Cheaper(t *testing.T) {
	sc := committedContext(t, intent.Intent{Query: "dog food"}, []result.Match{
		matchWithPrice(20), matchWithPrice(40),
	})

	got := newResolver().Resolve(sc, "show me cheaper options", intent.Intent{Query: "dog food"})

	// ceiling = 0.8 * mean(20, 40) = 24
	if got.PriceMax == nil || *got.PriceMax != 24 {
		t.Fatalf("PriceMax = %v, want 24", got.PriceMax)
	}
	if got.PriceMin != nil {
		t.Errorf("PriceMin = %v, want nil", *got.PriceMin)
	}
}

func TestResolve_CheaperOverridesParsedCeiling(t *testing.T) {
	sc := committedContext(t, intent.Intent{Query: "dog food"}, []result.Match{
		matchWithPrice(30),
	})

	parsed := 100.0
	it := intent.Intent{Query: "dog food", PriceMax: &parsed}
	got := newResolver().Resolve(sc, "cheaper please", it)

	if got.PriceMax == nil || *got.PriceMax != 24 {
		t.Errorf("PriceMax = %v, want 24 (comparative wins over parsed)", got.PriceMax)
	}
}

func TestResolve_Pricier(t *testing.T) {
	sc := committedContext(t, intent.Intent{Query: "cat food"}, []result.Match{
		matchWithPrice(10), matchWithPrice(20),
	})

	got := newResolver().Resolve(sc, "show premium options", intent.Intent{Query: "cat food"})

	// floor = 1.2 * mean(10, 20) = 18
	if got.PriceMin == nil || *got.PriceMin != 18 {
		t.Fatalf("PriceMin = %v, want 18", got.PriceMin)
	}
	if got.PriceMax != nil {
		t.Errorf("PriceMax = %v, want nil", *got.PriceMax)
	}
}

func TestResolve_CheaperWithoutAnchorIsNoOp(t *testing.T) {
	sc := NewContext()

	got := newResolver().Resolve(sc, "cheaper please", intent.Intent{Query: "dog food"})

	if got.PriceMax != nil || got.PriceMin != nil {
		t.Error("price transition must not fire without previous results")
	}
}

func TestResolve_SpeciesInheritance(t *testing.T) {
	sp := intent.SpeciesDog
	sc := committedContext(t, intent.Intent{Query: "dog food", Species: &sp}, nil)

	got := newResolver().Resolve(sc, "what about treats", intent.Intent{Query: "treats"})

	if got.Species == nil || *got.Species != intent.SpeciesDog {
		t.Errorf("Species = %v, want inherited dog", got.Species)
	}
}

func TestResolve_SpeciesNotOverridden(t *testing.T) {
	dog := intent.SpeciesDog
	sc := committedContext(t, intent.Intent{Query: "dog food", Species: &dog}, nil)

	cat := intent.SpeciesCat
	got := newResolver().Resolve(sc, "now cat food", intent.Intent{Query: "cat food", Species: &cat})

	if *got.Species != intent.SpeciesCat {
		t.Errorf("Species = %v, explicit species must win", *got.Species)
	}
}

func TestResolve_AdditiveExclusions(t *testing.T) {
	sc := committedContext(t, intent.Intent{
		Query:      "dog food",
		Exclusions: []string{"salmon"},
	}, nil)

	got := newResolver().Resolve(sc, "also without chicken", intent.Intent{
		Query:      "dog food",
		Exclusions: []string{"chicken"},
	})

	if !slices.Contains(got.Exclusions, "salmon") || !slices.Contains(got.Exclusions, "chicken") {
		t.Errorf("Exclusions = %v, want both salmon and chicken", got.Exclusions)
	}
}

func TestResolve_NonAdditiveTurnKeepsOwnExclusions(t *testing.T) {
	sc := committedContext(t, intent.Intent{
		Query:      "dog food",
		Exclusions: []string{"salmon"},
	}, nil)

	got := newResolver().Resolve(sc, "chicken-free food", intent.Intent{
		Query:      "dog food",
		Exclusions: []string{"chicken"},
	})

	if slices.Contains(got.Exclusions, "salmon") {
		t.Errorf("Exclusions = %v, session terms must not leak without the additive cue", got.Exclusions)
	}
}

func TestResolve_DifferentBrands(t *testing.T) {
	sc := committedContext(t, intent.Intent{Query: "dog food"}, []result.Match{
		result.NewMatch(catalog.Product{Brand: "Acme", Price: 10}, 0.9),
		result.NewMatch(catalog.Product{Brand: "PetCo", Price: 12}, 0.8),
		result.NewMatch(catalog.Product{Brand: "Acme", Price: 14}, 0.7),
	})

	got := newResolver().Resolve(sc, "show me different brands", intent.Intent{Query: "dog food"})

	if !slices.Equal(got.ExcludeBrands, []string{"Acme", "PetCo"}) {
		t.Errorf("ExcludeBrands = %v, want [Acme PetCo]", got.ExcludeBrands)
	}
}

func TestCommit_AccumulatesUnconditionally(t *testing.T) {
	r := newResolver()
	sc := NewContext()

	r.Commit(sc, "salmon-free food", intent.Intent{Exclusions: []string{"salmon"}}, nil)
	r.Commit(sc, "chicken-free food", intent.Intent{Exclusions: []string{"chicken"}}, nil)

	got := sc.Exclusions()
	if !slices.Equal(got, []string{"salmon", "chicken"}) {
		t.Errorf("exclusions = %v, accumulation is unconditional post-turn", got)
	}
}

func TestCommit_BrandsReplacedNotAccumulated(t *testing.T) {
	r := newResolver()
	sc := NewContext()

	r.Commit(sc, "t1", intent.Intent{}, []result.Match{
		result.NewMatch(catalog.Product{Brand: "Acme"}, 0.9),
	})
	r.Commit(sc, "t2", intent.Intent{}, []result.Match{
		result.NewMatch(catalog.Product{Brand: "PetCo"}, 0.9),
	})

	if got := sc.LastBrands(); !slices.Equal(got, []string{"PetCo"}) {
		t.Errorf("LastBrands = %v, want only the latest result set's brands", got)
	}
}

func TestCommit_LogsUserAndAssistantTurns(t *testing.T) {
	r := newResolver()
	sc := NewContext()

	r.Commit(sc, "salmon-free dog food", intent.Intent{Exclusions: []string{"salmon"}}, []result.Match{
		matchWithPrice(10), matchWithPrice(20),
	})

	turns := sc.Turns()
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want user + assistant entry per committed turn", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "salmon-free dog food" {
		t.Errorf("turn[0] = %+v", turns[0])
	}
	if turns[1].Role != "assistant" || turns[1].Content != "Found 2 products" {
		t.Errorf("turn[1] = %+v", turns[1])
	}
}

func TestCommit_KeepsPriceWindowAcrossUnboundedTurns(t *testing.T) {
	r := newResolver()
	sc := NewContext()

	ceiling := 50.0
	r.Commit(sc, "dog food under 50", intent.Intent{PriceMax: &ceiling}, nil)
	r.Commit(sc, "also without chicken", intent.Intent{Exclusions: []string{"chicken"}}, nil)

	if !strings.Contains(sc.Summary(), "Price range: $0-$50.00") {
		t.Errorf("summary = %q, a turn without bounds must keep the window", sc.Summary())
	}

	floor := 30.0
	r.Commit(sc, "premium food over 30", intent.Intent{PriceMin: &floor}, nil)
	if !strings.Contains(sc.Summary(), "Price range: $30.00-$any") {
		t.Errorf("summary = %q, a turn with a bound replaces the window", sc.Summary())
	}
}

func TestCommit_EmptyResultsStillUpdate(t *testing.T) {
	r := newResolver()
	sc := committedContext(t, intent.Intent{}, []result.Match{matchWithPrice(10)})

	r.Commit(sc, "t2", intent.Intent{Exclusions: []string{"beef"}}, nil)

	if _, ok := sc.MeanLastPrice(); ok {
		t.Error("empty result set replaces the price anchor")
	}
	if !slices.Contains(sc.Exclusions(), "beef") {
		t.Error("empty results still accumulate exclusions")
	}
}
