package chi

import (
	"github.com/kailas-cloud/petsearch/internal/domain/catalog"
	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	domprofile "github.com/kailas-cloud/petsearch/internal/domain/profile"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

// IntentRequest is the structured intent extracted upstream from the user's
// message. All constraint fields are optional; absent means unconstrained.
type IntentRequest struct {
	Query         string   `json:"query"`
	Species       *string  `json:"species,omitempty"`
	Exclusions    []string `json:"exclusions,omitempty"`
	Requirements  []string `json:"requirements,omitempty"`
	PriceMin      *float64 `json:"price_min,omitempty"`
	PriceMax      *float64 `json:"price_max,omitempty"`
	LifeStage     *string  `json:"life_stage,omitempty"`
	SizeCategory  *string  `json:"size_category,omitempty"`
	Brand         *string  `json:"brand,omitempty"`
	ExcludeBrands []string `json:"exclude_brands,omitempty"`
}

func (r IntentRequest) toDomain() intent.Intent {
	it := intent.Intent{
		Query:         r.Query,
		Exclusions:    r.Exclusions,
		Requirements:  r.Requirements,
		PriceMin:      r.PriceMin,
		PriceMax:      r.PriceMax,
		Brand:         r.Brand,
		ExcludeBrands: r.ExcludeBrands,
	}
	if r.Species != nil {
		sp := intent.Species(*r.Species)
		it.Species = &sp
	}
	if r.LifeStage != nil {
		ls := intent.LifeStage(*r.LifeStage)
		it.LifeStage = &ls
	}
	if r.SizeCategory != nil {
		sc := intent.SizeCategory(*r.SizeCategory)
		it.SizeCategory = &sc
	}
	return it
}

func intentToResponse(it intent.Intent) IntentRequest {
	resp := IntentRequest{
		Query:         it.Query,
		Exclusions:    it.Exclusions,
		Requirements:  it.Requirements,
		PriceMin:      it.PriceMin,
		PriceMax:      it.PriceMax,
		Brand:         it.Brand,
		ExcludeBrands: it.ExcludeBrands,
	}
	if it.Species != nil {
		s := string(*it.Species)
		resp.Species = &s
	}
	if it.LifeStage != nil {
		s := string(*it.LifeStage)
		resp.LifeStage = &s
	}
	if it.SizeCategory != nil {
		s := string(*it.SizeCategory)
		resp.SizeCategory = &s
	}
	return resp
}

// CreateSessionRequest opens a conversation for a customer.
type CreateSessionRequest struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`
}

// SessionResponse identifies a created session.
type SessionResponse struct {
	SessionID  string `json:"session_id"`
	CustomerID string `json:"customer_id"`
}

// MessageRequest is one chat turn: the raw text for cue detection plus the
// structured intent extracted from it upstream.
type MessageRequest struct {
	Text   string        `json:"text"`
	Intent IntentRequest `json:"intent"`
}

// MatchResponse is one accepted product with its similarity score.
type MatchResponse struct {
	Product    catalog.Product `json:"product"`
	Similarity float64         `json:"similarity"`
}

func matchesToResponse(matches []result.Match) []MatchResponse {
	out := make([]MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = MatchResponse{Product: m.Product(), Similarity: m.Similarity()}
	}
	return out
}

// TurnResponse is the outcome of one chat turn.
type TurnResponse struct {
	Intent         IntentRequest   `json:"intent"`
	Matches        []MatchResponse `json:"matches"`
	ContextSummary string          `json:"context_summary"`
}

// ContextResponse is the session context projection.
type ContextResponse struct {
	Summary    string      `json:"summary"`
	Species    *string     `json:"species,omitempty"`
	Exclusions []string    `json:"exclusions,omitempty"`
	Turns      []TurnEntry `json:"turns,omitempty"`
}

// TurnEntry is one logged conversation entry.
type TurnEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchRequest is a stateless hybrid search call.
type SearchRequest struct {
	Intent     IntentRequest `json:"intent"`
	MaxResults int           `json:"max_results,omitempty"`
}

// SearchResponse carries the accepted matches.
type SearchResponse struct {
	Matches []MatchResponse `json:"matches"`
	Total   int             `json:"total"`
}

// PetRequest records a pet on a customer profile.
type PetRequest struct {
	Name      string   `json:"name"`
	Species   string   `json:"species"`
	Breed     string   `json:"breed,omitempty"`
	AgeYears  int      `json:"age_years,omitempty"`
	Allergies []string `json:"allergies,omitempty"`
}

func (r PetRequest) toDomain() domprofile.Pet {
	return domprofile.Pet{
		Name:      r.Name,
		Species:   r.Species,
		Breed:     r.Breed,
		AgeYears:  r.AgeYears,
		Allergies: r.Allergies,
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
