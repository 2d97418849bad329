// Package profile holds the long-term customer data the conversation layer
// consults: who the customer is and which pets, with which allergies, they
// shop for.
package profile

import "strings"

// Pet is one animal on a customer profile. Allergies feed the long-term
// exclusion set merged into every search for that customer.
type Pet struct {
	Name      string   `json:"name" db:"name"`
	Species   string   `json:"species" db:"species"`
	Breed     string   `json:"breed,omitempty" db:"breed"`
	AgeYears  int      `json:"age_years,omitempty" db:"age_years"`
	Allergies []string `json:"allergies,omitempty" db:"-"`
}

// Customer is a minimal account record.
type Customer struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Normalized returns a copy with trimmed name and lowercased, trimmed,
// duplicate-free allergies.
func (p Pet) Normalized() Pet {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	out.Species = strings.ToLower(strings.TrimSpace(p.Species))

	out.Allergies = nil
	seen := make(map[string]struct{}, len(p.Allergies))
	for _, a := range p.Allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out.Allergies = append(out.Allergies, a)
	}
	return out
}
