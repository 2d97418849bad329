package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
)

// DefaultTurnCapacity bounds the turn log; the oldest turns are evicted
// first once the capacity is reached.
const DefaultTurnCapacity = 10

// Turn is one logged conversation entry.
type Turn struct {
	Role    string
	Content string
	At      time.Time
}

// Context is the short-term state of one conversation. It is owned by the
// resolver and mutated only through Resolver.Commit, after a completed
// search; a failed search leaves it untouched.
type Context struct {
	species     *intent.Species
	exclusions  []string
	priceMin    *float64
	priceMax    *float64
	lastBrands  []string
	lastResults []result.Match
	turns       []Turn
	capacity    int
}

// NewContext creates an empty session context with the default turn capacity.
func NewContext() *Context {
	return &Context{capacity: DefaultTurnCapacity}
}

// Species returns the current species, or nil when none was seen yet.
func (c *Context) Species() *intent.Species { return c.species }

// Exclusions returns the accumulated exclusion set. It grows monotonically
// across turns until the session is discarded.
func (c *Context) Exclusions() []string { return slices.Clone(c.exclusions) }

// LastBrands returns the brand set shown in the previous result set.
func (c *Context) LastBrands() []string { return slices.Clone(c.lastBrands) }

// Turns returns the bounded turn log, oldest first.
func (c *Context) Turns() []Turn { return slices.Clone(c.turns) }

// MeanLastPrice returns the mean price of the previous result set.
// The second return is false when there is no previous result set.
func (c *Context) MeanLastPrice() (float64, bool) {
	if len(c.lastResults) == 0 {
		return 0, false
	}
	var sum float64
	for _, m := range c.lastResults {
		sum += m.Product().Price
	}
	return sum / float64(len(c.lastResults)), true
}

// Summary is the human-readable projection of the active filters.
func (c *Context) Summary() string {
	var parts []string
	if c.species != nil {
		parts = append(parts, "Shopping for: "+string(*c.species))
	}
	if len(c.exclusions) > 0 {
		parts = append(parts, "Excluding: "+strings.Join(c.exclusions, ", "))
	}
	if c.priceMin != nil || c.priceMax != nil {
		minStr, maxStr := "0", "any"
		if c.priceMin != nil {
			minStr = fmt.Sprintf("%.2f", *c.priceMin)
		}
		if c.priceMax != nil {
			maxStr = fmt.Sprintf("%.2f", *c.priceMax)
		}
		parts = append(parts, fmt.Sprintf("Price range: $%s-$%s", minStr, maxStr))
	}
	if len(parts) == 0 {
		return "No active filters"
	}
	return strings.Join(parts, " | ")
}

// addTurn appends a log entry, evicting the oldest beyond capacity (FIFO).
func (c *Context) addTurn(role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content, At: time.Now()})
	if len(c.turns) > c.capacity {
		c.turns = c.turns[len(c.turns)-c.capacity:]
	}
}

// unionExclusions merges terms into the accumulated set, preserving first-seen
// order and case-insensitive uniqueness.
func (c *Context) unionExclusions(terms []string) {
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(c.exclusions, t) {
			continue
		}
		c.exclusions = append(c.exclusions, t)
	}
}
