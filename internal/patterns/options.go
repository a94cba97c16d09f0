package patterns

import (
	"strings"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Options matches any one of its alternatives
type Options struct {
	Patterns []Pattern
	Items    ItemsProvider
}

// NewOptions creates an alternation of patterns
func NewOptions(items ItemsProvider, patterns ...Pattern) *Options {
	return &Options{Patterns: patterns, Items: items}
}

func (p *Options) StaticPrefixes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, el := range p.Patterns {
		for _, prefix := range el.StaticPrefixes() {
			if !seen[prefix] {
				seen[prefix] = true
				out = append(out, prefix)
			}
		}
	}
	return out
}

func (p *Options) IsStaticAndRequired() bool {
	for _, el := range p.Patterns {
		if !el.IsStaticAndRequired() {
			return false
		}
	}
	return len(p.Patterns) > 0
}

func (p *Options) Match(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params MatchParams, start, end int) []MatchResult {
	if p.Items != nil {
		items = p.Items
	}
	var out []MatchResult
	for _, el := range p.Patterns {
		out = append(out, el.Match(owner, stack, items, params, start, end)...)
	}
	return Rank(out)
}

func (p *Options) CompletionResults(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params CompletionParams, start, end int) CompletionResults {
	if p.Items != nil {
		items = p.Items
	}
	res := CompletionResults{Required: true}
	for _, el := range p.Patterns {
		r := el.CompletionResults(owner, stack, items, params, start, end)
		res.Items = append(res.Items, r.Items...)
		if !r.Required {
			res.Required = false
		}
	}
	return res
}

func (p *Options) String() string {
	parts := make([]string, len(p.Patterns))
	for i, el := range p.Patterns {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// Optional matches its pattern or nothing at all
type Optional struct {
	Pattern Pattern
}

// NewOptional wraps pattern so that it may be skipped
func NewOptional(pattern Pattern) *Optional {
	return &Optional{Pattern: pattern}
}

func (p *Optional) StaticPrefixes() []string {
	prefixes := p.Pattern.StaticPrefixes()
	for _, prefix := range prefixes {
		if prefix == "" {
			return prefixes
		}
	}
	return append([]string{""}, prefixes...)
}

func (p *Optional) IsStaticAndRequired() bool { return false }

func (p *Optional) Match(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params MatchParams, start, end int) []MatchResult {
	var out []MatchResult
	for _, r := range p.Pattern.Match(owner, stack, items, params, start, end) {
		// an unknown item is better skipped than reported
		if r.Problems() == 0 {
			out = append(out, r)
		}
	}
	out = append(out, MatchResult{Start: start, End: start})
	return Rank(out)
}

func (p *Optional) CompletionResults(owner types.Symbol, stack []types.Symbol, items ItemsProvider, params CompletionParams, start, end int) CompletionResults {
	res := p.Pattern.CompletionResults(owner, stack, items, params, start, end)
	res.Required = false
	return res
}

func (p *Optional) String() string { return "[" + p.Pattern.String() + "]" }
