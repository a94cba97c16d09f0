package patterns

import (
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Item is a placeholder matched by delegating to an ItemsProvider
type Item struct {
	DisplayName string
}

// NewItem creates an item placeholder shown as displayName in diagnostics
func NewItem(displayName string) *Item {
	return &Item{DisplayName: displayName}
}

func (p *Item) StaticPrefixes() []string { return []string{""} }

func (p *Item) IsStaticAndRequired() bool { return false }

func (p *Item) Match(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params MatchParams, start, end int) []MatchResult {
	if start == end {
		return []MatchResult{{Start: start, End: end, Segments: []types.NameSegment{p.unknown(owner, stack, items, start, end)}}}
	}

	var hits []types.Symbol
	if items != nil {
		hits = items.MatchName(params.Name[start:end], stack, params.Registry)
	}

	var segments []types.NameSegment
	switch {
	case len(hits) == 1 && isMatch(hits[0]):
		for _, seg := range hits[0].NameSegments() {
			segments = append(segments, seg.WithOffset(start))
		}
	case len(hits) > 0:
		segments = []types.NameSegment{{Start: start, End: end, Symbols: hits, DisplayName: p.DisplayName}}
	default:
		segments = []types.NameSegment{p.unknown(owner, stack, items, start, end)}
	}
	return []MatchResult{{Start: start, End: end, Segments: segments}}
}

func (p *Item) unknown(owner types.Symbol, stack []types.Symbol, items ItemsProvider, start, end int) types.NameSegment {
	seg := types.NameSegment{
		Start:       start,
		End:         end,
		Problem:     types.ProblemUnknownItem,
		DisplayName: p.DisplayName,
	}
	if items != nil {
		seg.SymbolKinds = items.SymbolKinds(ownerOf(owner, stack))
	}
	return seg
}

func isMatch(sym types.Symbol) bool {
	_, ok := sym.(*types.Match)
	return ok
}

func (p *Item) CompletionResults(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params CompletionParams, start, end int) CompletionResults {
	if items == nil {
		return CompletionResults{Required: true}
	}
	results := items.CodeCompletion(params.Name[start:end], max(params.Position-start, 0), stack, params.Registry)
	stop := start == end && start == params.Position
	out := make([]types.CompletionItem, len(results))
	for i, item := range results {
		out[i] = item.WithOffset(item.Offset + start).WithStopSequencePatternEvaluation(stop)
	}
	return CompletionResults{Items: out, Required: true}
}

func (p *Item) String() string { return "{item}" }
