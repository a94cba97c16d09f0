package patterns

import (
	"strings"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Static matches a literal string
type Static struct {
	Content string
}

// NewStatic creates a literal pattern
func NewStatic(content string) *Static {
	return &Static{Content: content}
}

func (p *Static) StaticPrefixes() []string { return []string{p.Content} }

func (p *Static) IsStaticAndRequired() bool { return p.Content != "" }

func (p *Static) Match(_ types.Symbol, _ []types.Symbol, _ ItemsProvider, params MatchParams, start, end int) []MatchResult {
	if !strings.HasPrefix(params.Name[start:end], p.Content) {
		return nil
	}
	stop := start + len(p.Content)
	return []MatchResult{{Start: start, End: stop, Segments: []types.NameSegment{types.NewSegment(start, stop)}}}
}

func (p *Static) CompletionResults(_ types.Symbol, _ []types.Symbol, _ ItemsProvider, params CompletionParams, start, end int) CompletionResults {
	if params.Position < start {
		return CompletionResults{Required: true}
	}
	typed := params.Name[start:clamp(params.Position, start, end)]
	if !strings.HasPrefix(p.Content, typed) {
		return CompletionResults{Required: true}
	}
	return CompletionResults{
		Items:    []types.CompletionItem{{Name: p.Content, Offset: start}},
		Required: true,
	}
}

func (p *Static) String() string { return p.Content }
