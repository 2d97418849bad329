// Package exclusion merges constraint terms gathered from different sources
// (the turn's own text, the session context, the customer's pet profiles)
// into one duplicate-free set.
package exclusion

import "strings"

// Merge unions any number of exclusion term lists. Terms are lowercased and
// trimmed; duplicates are dropped, keeping first-seen order. Merge is pure
// and idempotent: merging a set with itself returns the same set.
func Merge(sources ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, src := range sources {
		for _, term := range src {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}
