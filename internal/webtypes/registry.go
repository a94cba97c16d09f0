package webtypes

import (
	"github.com/dshills/websymbols-mcp/internal/patterns"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Registry is the symbol registry contribution symbols are resolved against
type Registry interface {
	types.Registry

	// ResolveReference returns the symbols a named path points at, including
	// abstract ones. It is used to resolve "extends" and item owners.
	ResolveReference(path Path, stack []types.Symbol) []types.Symbol

	// Detach captures a pointer that re-resolves an equivalent registry
	Detach() types.Pointer[Registry]
}

// MatchWrappers matches name against wrappers of namespace/kind. Static
// wrappers match when one of their storage keys equals one of the query forms
// of name; pattern wrappers match through their compiled pattern.
func MatchWrappers(registry Registry, wrappers []*Wrapper, namespace types.Namespace, kind types.Kind,
	name string, stack []types.Symbol, includeAbstract bool) []types.Symbol {
	if len(wrappers) == 0 {
		return nil
	}
	queryNames := registry.Names(namespace, kind, name, types.TargetQuery)

	var out []types.Symbol
	for _, w := range wrappers {
		if w.contribution.Abstract && !includeAbstract {
			continue
		}
		sym := w.WithRegistryContext(registry)
		if w.variant == VariantPattern {
			out = append(out, sym.MatchPattern(name, stack)...)
			continue
		}
		if containsAny(registry.Names(namespace, kind, w.Name(), types.TargetStorageKey), queryNames) {
			out = append(out, sym)
		}
	}
	return out
}

// CompleteWrappers lists completion proposals for wrappers of namespace/kind
func CompleteWrappers(registry Registry, wrappers []*Wrapper, namespace types.Namespace, kind types.Kind,
	name string, position int, stack []types.Symbol) []types.CompletionItem {
	var out []types.CompletionItem
	for _, w := range wrappers {
		if w.contribution.Abstract {
			continue
		}
		sym := w.WithRegistryContext(registry)
		if w.variant == VariantPattern {
			out = append(out, sym.CompletePattern(name, position, stack)...)
			continue
		}
		for _, variant := range registry.Names(namespace, kind, w.Name(), types.TargetCompletionVariants) {
			out = append(out, types.NewCompletionItem(variant, 0, sym))
		}
	}
	return out
}

// MatchPattern matches the whole of name against the symbol's pattern and
// returns the best match as a composite symbol.
func (s *Symbol) MatchPattern(name string, stack []types.Symbol) []types.Symbol {
	p := s.base.Pattern()
	if p == nil || s.inProgress(stack, name, -1) {
		return nil
	}
	stack = s.pushFrame(stack, name, -1)
	results := patterns.MatchFull(p, s, stack, nil, s.registry, name)
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	segments := make([]types.NameSegment, 0, len(best.Segments)+1)
	segments = append(segments, types.NewSegment(0, 0, s))
	segments = append(segments, best.Segments...)
	return []types.Symbol{types.NewMatch(name, s.Namespace(), s.Kind(), s.Origin(), segments)}
}

// CompletePattern lists completion proposals from the symbol's pattern
func (s *Symbol) CompletePattern(name string, position int, stack []types.Symbol) []types.CompletionItem {
	p := s.base.Pattern()
	if p == nil || s.inProgress(stack, name, position) {
		return nil
	}
	stack = s.pushFrame(stack, name, position)
	params := patterns.CompletionParams{Name: name, Position: position, Registry: s.registry}
	res := p.CompletionResults(s, stack, nil, params, 0, len(name))
	out := make([]types.CompletionItem, 0, len(res.Items))
	for _, item := range res.Items {
		if len(item.Symbols) == 0 {
			item.Symbols = []types.Symbol{s}
			item.Priority = s.Priority()
			item.Proximity = s.Proximity()
			item.Deprecated = item.Deprecated || s.Deprecated()
		}
		out = append(out, item)
	}
	return out
}

// patternFrame marks a pattern evaluation in progress on the context stack,
// so items referring back to the same kind cannot re-enter the pattern with
// the same input. A frame is not a Scope.
type patternFrame struct {
	types.Symbol
	contribution *Contribution
	name         string
	position     int
}

func (s *Symbol) inProgress(stack []types.Symbol, name string, position int) bool {
	for _, el := range stack {
		if f, ok := el.(*patternFrame); ok && f.contribution == s.base.contribution && f.name == name && f.position == position {
			return true
		}
	}
	return false
}

func (s *Symbol) pushFrame(stack []types.Symbol, name string, position int) []types.Symbol {
	out := make([]types.Symbol, len(stack), len(stack)+1)
	copy(out, stack)
	return append(out, &patternFrame{Symbol: s, contribution: s.base.contribution, name: name, position: position})
}

func containsAny(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
