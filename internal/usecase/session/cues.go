package session

import "strings"

// Cues are the structured follow-up signals extracted from a turn's text.
// The classifier is pluggable so the matching strategy (keyword, pattern,
// model-based) can change without touching the resolver's transitions.
type Cues struct {
	Cheaper        bool // "cheaper", "less expensive"
	Pricier        bool // "more expensive", "premium"
	Additive       bool // "also", "too", "additionally", "and"
	DifferentBrand bool // "different" + "brand"
}

// Classifier turns free text into structured cue flags.
type Classifier interface {
	Classify(text string) Cues
}

// KeywordClassifier is the default classifier: lowercase token and phrase
// matching. Single-word cues match whole tokens only, so "brand" never
// triggers the additive "and" cue and "tool" never triggers "too".
type KeywordClassifier struct{}

// NewKeywordClassifier creates the default cue classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var additiveCues = []string{"also", "too", "additionally", "and"}

// Classify implements Classifier.
func (KeywordClassifier) Classify(text string) Cues {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	var cues Cues

	cues.Cheaper = tokens["cheaper"] || strings.Contains(lower, "less expensive")
	cues.Pricier = strings.Contains(lower, "more expensive") || tokens["premium"]

	for _, cue := range additiveCues {
		if tokens[cue] {
			cues.Additive = true
			break
		}
	}

	cues.DifferentBrand = tokens["different"] && (tokens["brand"] || tokens["brands"])

	return cues
}

// tokenize splits lowercased text into a set of alphanumeric tokens.
func tokenize(lower string) map[string]bool {
	tokens := make(map[string]bool)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens[b.String()] = true
			b.Reset()
		}
	}
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
