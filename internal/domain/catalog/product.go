package catalog

import "strings"

// Product is the metadata snapshot of one catalog item.
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Brand        string   `json:"brand"`
	Price        float64  `json:"price"`
	Species      string   `json:"target_pet"`
	LifeStage    string   `json:"life_stage"`
	SizeCategory string   `json:"size_category"`
	Ingredients  []string `json:"ingredients"`
	DietaryTags  []string `json:"dietary_tags"`
}

// EmbeddingText is the text representation that gets vectorized: name plus
// description for rich semantic content.
func (p Product) EmbeddingText() string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + ". " + p.Description
}

// IngredientText returns the lowercased, comma-joined ingredient list used
// for literal exclusion and requirement matching.
func (p Product) IngredientText() string {
	return strings.ToLower(strings.Join(p.Ingredients, ", "))
}
