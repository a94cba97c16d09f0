package patterns

import (
	"sort"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// ItemsProvider supplies the symbols an item placeholder may stand for
type ItemsProvider interface {
	MatchName(name string, stack []types.Symbol, registry types.Registry) []types.Symbol
	CodeCompletion(name string, position int, stack []types.Symbol, registry types.Registry) []types.CompletionItem
	SymbolKinds(owner types.Symbol) []types.QualifiedKind
}

// MatchParams carries the full name being matched
type MatchParams struct {
	Name     string
	Registry types.Registry
}

// CompletionParams carries the full name being completed and the cursor position in it
type CompletionParams struct {
	Name     string
	Position int
	Registry types.Registry
}

// MatchResult is one way a pattern matched name[Start:End]
type MatchResult struct {
	Start    int
	End      int
	Segments []types.NameSegment
}

// Problems counts segments that carry a match problem
func (r MatchResult) Problems() int {
	n := 0
	for _, seg := range r.Segments {
		if seg.HasProblem() {
			n++
		}
	}
	return n
}

func (r MatchResult) concat(tail MatchResult) MatchResult {
	segments := make([]types.NameSegment, 0, len(r.Segments)+len(tail.Segments))
	segments = append(segments, r.Segments...)
	segments = append(segments, tail.Segments...)
	return MatchResult{Start: r.Start, End: tail.End, Segments: segments}
}

// CompletionResults holds completion proposals. Required is false when the
// pattern may be skipped, letting an enclosing sequence continue with the
// elements that follow.
type CompletionResults struct {
	Items    []types.CompletionItem
	Required bool
}

// Pattern matches and completes dynamic symbol names over name[start:end]
type Pattern interface {
	// StaticPrefixes lists literal prefixes every match starts with; "" means any
	StaticPrefixes() []string
	IsStaticAndRequired() bool
	Match(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params MatchParams, start, end int) []MatchResult
	CompletionResults(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params CompletionParams, start, end int) CompletionResults
	String() string
}

// Rank orders results best first: fewer problems, then longer matches
func Rank(results []MatchResult) []MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := results[i].Problems(), results[j].Problems()
		if pi != pj {
			return pi < pj
		}
		return results[i].End > results[j].End
	})
	return results
}

// MatchFull matches the whole of name and returns the ranked results that cover it
func MatchFull(p Pattern, owner types.Symbol, stack []types.Symbol, items ItemsProvider, registry types.Registry, name string) []MatchResult {
	params := MatchParams{Name: name, Registry: registry}
	var out []MatchResult
	for _, r := range p.Match(owner, stack, items, params, 0, len(name)) {
		if r.Start == 0 && r.End == len(name) {
			out = append(out, r)
		}
	}
	return Rank(out)
}

func ownerOf(owner types.Symbol, stack []types.Symbol) types.Symbol {
	if owner != nil {
		return owner
	}
	if len(stack) > 0 {
		return stack[len(stack)-1]
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
