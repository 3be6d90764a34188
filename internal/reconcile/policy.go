package reconcile

import "sort"

// Built-in source precedence. Higher rank wins; an unknown source ranks 0
// and can still fill empty fields, just never displace anything.
var defaultRanks = map[string]int{
	"club_site":         90,
	"league_site":       80,
	"club_announcement": 70,
	"transfermarkt":     60,
	"ncsa":              50,
	"wikipedia":         40,
	"grokipedia":        30,
	"web_search":        20,
}

// Policy maps source identifiers to precedence ranks
type Policy struct {
	ranks map[string]int
}

// DefaultPolicy returns the built-in precedence table
func DefaultPolicy() *Policy {
	return NewPolicy(nil)
}

// NewPolicy returns the built-in table with the given overrides applied.
// Overrides may change existing ranks or introduce new sources.
func NewPolicy(overrides map[string]int) *Policy {
	ranks := make(map[string]int, len(defaultRanks)+len(overrides))
	for source, rank := range defaultRanks {
		ranks[source] = rank
	}
	for source, rank := range overrides {
		ranks[source] = rank
	}
	return &Policy{ranks: ranks}
}

// Rank returns the precedence rank for a source, 0 when unknown
func (p *Policy) Rank(source string) int {
	return p.ranks[source]
}

// Sources returns all known sources ordered by descending rank
func (p *Policy) Sources() []string {
	sources := make([]string, 0, len(p.ranks))
	for source := range p.ranks {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		if p.ranks[sources[i]] != p.ranks[sources[j]] {
			return p.ranks[sources[i]] > p.ranks[sources[j]]
		}
		return sources[i] < sources[j]
	})
	return sources
}
