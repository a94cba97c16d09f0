package patterns

import (
	"strings"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Sequence matches its patterns one after another. A non-static element
// followed by a required static element is bounded by the occurrences of that
// static text.
type Sequence struct {
	Patterns []Pattern
	// Items, when set, replaces the inherited items provider for this sub-tree
	Items ItemsProvider
}

// NewSequence creates a sequence of patterns
func NewSequence(items ItemsProvider, patterns ...Pattern) *Sequence {
	return &Sequence{Patterns: patterns, Items: items}
}

func (p *Sequence) StaticPrefixes() []string {
	prefixes := []string{""}
	for _, el := range p.Patterns {
		next := make([]string, 0, len(prefixes))
		for _, prefix := range prefixes {
			for _, s := range el.StaticPrefixes() {
				next = append(next, prefix+s)
			}
		}
		prefixes = next
		if !el.IsStaticAndRequired() {
			break
		}
	}
	return prefixes
}

func (p *Sequence) IsStaticAndRequired() bool {
	for _, el := range p.Patterns {
		if !el.IsStaticAndRequired() {
			return false
		}
	}
	return len(p.Patterns) > 0
}

func (p *Sequence) Match(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params MatchParams, start, end int) []MatchResult {
	if p.Items != nil {
		items = p.Items
	}
	return Rank(p.matchFrom(0, owner, stack, items, params, start, end))
}

func (p *Sequence) matchFrom(i int, owner types.Symbol, stack []types.Symbol, items ItemsProvider, params MatchParams, pos, end int) []MatchResult {
	if i == len(p.Patterns) {
		return []MatchResult{{Start: pos, End: pos}}
	}
	var out []MatchResult
	for _, bound := range p.bounds(i, params.Name, pos, end) {
		for _, head := range p.Patterns[i].Match(owner, stack, items, params, pos, bound) {
			for _, tail := range p.matchFrom(i+1, owner, stack, items, params, head.End, end) {
				out = append(out, head.concat(tail))
			}
		}
	}
	return out
}

// bounds lists the candidate end positions for element i starting at pos
func (p *Sequence) bounds(i int, name string, pos, end int) []int {
	el := p.Patterns[i]
	if el.IsStaticAndRequired() || i+1 >= len(p.Patterns) {
		return []int{end}
	}
	next := p.Patterns[i+1]
	if !next.IsStaticAndRequired() {
		return []int{end}
	}
	var out []int
	for k := pos; k <= end; k++ {
		for _, prefix := range next.StaticPrefixes() {
			if prefix != "" && strings.HasPrefix(name[k:end], prefix) {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

func (p *Sequence) CompletionResults(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params CompletionParams, start, end int) CompletionResults {
	if p.Items != nil {
		items = p.Items
	}
	matchParams := MatchParams{Name: params.Name, Registry: params.Registry}

	var out []types.CompletionItem
	pos := start
	for i, el := range p.Patterns {
		bound := end
		if bs := p.bounds(i, params.Name, pos, end); len(bs) > 0 {
			bound = bs[0]
		}

		// skip elements which are complete before the cursor
		if best, ok := bestClean(el.Match(owner, stack, items, matchParams, pos, bound)); ok {
			if best.End < params.Position || (best.End == params.Position && el.IsStaticAndRequired()) {
				pos = best.End
				continue
			}
		}

		res := el.CompletionResults(owner, stack, items, params, pos, bound)
		out = append(out, res.Items...)
		if res.Required || stopsSequence(res.Items) {
			return CompletionResults{Items: out, Required: true}
		}
	}
	return CompletionResults{Items: out, Required: p.IsStaticAndRequired()}
}

func bestClean(results []MatchResult) (MatchResult, bool) {
	for _, r := range Rank(results) {
		if r.Problems() == 0 {
			return r, true
		}
	}
	return MatchResult{}, false
}

func stopsSequence(items []types.CompletionItem) bool {
	for _, item := range items {
		if item.StopSequencePatternEvaluation {
			return true
		}
	}
	return false
}

func (p *Sequence) String() string {
	parts := make([]string, len(p.Patterns))
	for i, el := range p.Patterns {
		parts[i] = el.String()
	}
	return strings.Join(parts, "")
}
