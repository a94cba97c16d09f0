package webtypes

import (
	"slices"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// attribute-value types that are keywords rather than language types
var attributeValueKeywords = map[string]bool{
	"enum":     true,
	"of-match": true,
	"string":   true,
	"number":   true,
	"boolean":  true,
	"complex":  true,
}

// Symbol is a contribution resolved against a registry. Attributes absent on
// the contribution are inherited from the symbols it extends.
type Symbol struct {
	base     *Wrapper
	registry Registry

	// lineage holds the contributions this symbol was reached through while
	// resolving "extends", so a chain never revisits a contribution.
	lineage []*Contribution
	supers  atomic.Pointer[[]types.Symbol]
}

var (
	_ types.Symbol = (*Symbol)(nil)
	_ types.Scope  = (*Symbol)(nil)
)

func (s *Symbol) Wrapper() *Wrapper { return s.base }

// superContributions resolves the "extends" reference once per symbol
func (s *Symbol) superContributions() []types.Symbol {
	if supers := s.supers.Load(); supers != nil {
		return *supers
	}
	var resolved []types.Symbol
	if ext := s.base.contribution.Extends; ext != nil {
		resolved = s.resolveSupers(ext)
	}
	s.supers.CompareAndSwap(nil, &resolved)
	return *s.supers.Load()
}

func (s *Symbol) resolveSupers(ext *Reference) []types.Symbol {
	path, err := ParsePath(ext.Path, s.base.namespace)
	if err != nil || path.IsKindRef() {
		log.Debug().Str("extends", ext.Path).Str("symbol", s.base.String()).Msg("Ignoring unresolvable extends")
		return nil
	}
	lineage := make([]*Contribution, 0, len(s.lineage)+1)
	lineage = append(lineage, s.lineage...)
	lineage = append(lineage, s.base.contribution)

	var out []types.Symbol
	for _, sup := range s.registry.ResolveReference(path, nil) {
		if ws, ok := sup.(*Symbol); ok {
			if slices.Contains(lineage, ws.base.contribution) {
				continue
			}
			sup = &Symbol{base: ws.base, registry: ws.registry, lineage: lineage}
		}
		out = append(out, sup)
	}
	return out
}

// inherited returns local when present, else the first present value over supers
func inherited[T comparable](local T, supers func() []types.Symbol, get func(types.Symbol) T) T {
	var zero T
	if local != zero {
		return local
	}
	for _, sup := range supers() {
		if v := get(sup); v != zero {
			return v
		}
	}
	return zero
}

func (s *Symbol) Namespace() types.Namespace { return s.base.namespace }
func (s *Symbol) Kind() types.Kind           { return s.base.kind }
func (s *Symbol) Name() string               { return s.base.ContributionName() }
func (s *Symbol) MatchedName() string        { return s.base.Name() }
func (s *Symbol) Origin() types.Origin       { return s.base.origin }

// NameSegments covers the whole matched name, or nothing for pattern symbols
func (s *Symbol) NameSegments() []types.NameSegment {
	end := len(s.MatchedName())
	if s.base.variant == VariantPattern {
		end = 0
	}
	return []types.NameSegment{types.NewSegment(0, end, s)}
}

// Description keeps a declared description even when it is empty
func (s *Symbol) Description() string {
	if d := s.base.contribution.Description; d != nil {
		return s.base.origin.RenderDescription(*d)
	}
	return inherited("", s.superContributions, types.Symbol.Description)
}

// DescriptionSections merges local sections with inherited ones; the first
// occurrence of a key wins.
func (s *Symbol) DescriptionSections() map[string]string {
	out := make(map[string]string)
	for _, sec := range s.base.contribution.DescriptionSections {
		if _, ok := out[sec.Key]; !ok {
			out[sec.Key] = sec.Value
		}
	}
	for _, sup := range s.superContributions() {
		for k, v := range sup.DescriptionSections() {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

func (s *Symbol) DocURL() string {
	if u := s.base.contribution.DocURL; u != nil {
		return *u
	}
	return inherited("", s.superContributions, types.Symbol.DocURL)
}

func (s *Symbol) Icon() string {
	var local string
	if ref := s.base.contribution.Icon; ref != nil {
		local = s.base.origin.loadIcon(*ref)
	}
	return inherited(local, s.superContributions, types.Symbol.Icon)
}

// Type is not comparable in general, so it cannot go through inherited
func (s *Symbol) Type() any {
	if t := s.base.origin.resolveType(s.base.contribution.Type); t != nil {
		return t
	}
	for _, sup := range s.superContributions() {
		if t := sup.Type(); t != nil {
			return t
		}
	}
	return nil
}

func (s *Symbol) Location() *types.Location {
	local := s.base.origin.resolveLocation(s.base.contribution.Source)
	return inherited(local, s.superContributions, types.Symbol.Location)
}

func (s *Symbol) Source() any {
	if src := s.base.contribution.Source; src != nil {
		return src
	}
	for _, sup := range s.superContributions() {
		if src := sup.Source(); src != nil {
			return src
		}
	}
	return nil
}

// AttributeValue merges the declared value field by field over the chain
func (s *Symbol) AttributeValue() *types.AttributeValue {
	var values []*types.AttributeValue
	if av := s.base.contribution.AttributeValue; av != nil {
		values = append(values, s.convertAttributeValue(av))
	}
	for _, sup := range s.superContributions() {
		if av := sup.AttributeValue(); av != nil {
			values = append(values, av)
		}
	}
	return mergeAttributeValues(values)
}

func (s *Symbol) convertAttributeValue(av *AttributeValue) *types.AttributeValue {
	out := &types.AttributeValue{
		Kind:     av.Kind,
		Required: av.Required,
		Default:  av.Default,
	}
	if av.Type != nil {
		if keyword, ok := av.Type.(string); ok && attributeValueKeywords[keyword] {
			out.Type = keyword
		} else {
			out.Type = "complex"
			out.LangType = s.base.origin.resolveType(av.Type)
		}
	}
	return out
}

func mergeAttributeValues(values []*types.AttributeValue) *types.AttributeValue {
	if len(values) == 0 {
		return nil
	}
	out := &types.AttributeValue{}
	for _, v := range values {
		if out.Kind == "" {
			out.Kind = v.Kind
		}
		if out.Type == "" {
			out.Type = v.Type
		}
		if out.Required == nil {
			out.Required = v.Required
		}
		if out.Default == nil {
			out.Default = v.Default
		}
		if out.LangType == nil {
			out.LangType = v.LangType
		}
	}
	return out
}

func (s *Symbol) Priority() *types.Priority {
	return inherited(s.base.contribution.Priority, s.superContributions, types.Symbol.Priority)
}

func (s *Symbol) Proximity() *int {
	return inherited(s.base.contribution.Proximity, s.superContributions, types.Symbol.Proximity)
}

// Required is declared by generic and html attribute contributions only
func (s *Symbol) Required() *bool {
	var local *bool
	if s.base.contribution.Shape != ShapeHTMLElement {
		local = s.base.contribution.Required
	}
	return inherited(local, s.superContributions, types.Symbol.Required)
}

func (s *Symbol) DefaultValue() *string {
	var local *string
	if s.base.contribution.Shape != ShapeHTMLElement {
		local = s.base.contribution.Default
	}
	return inherited(local, s.superContributions, types.Symbol.DefaultValue)
}

func (s *Symbol) Properties() map[string]any { return s.base.contribution.Properties }

func (s *Symbol) Deprecated() bool   { return s.base.contribution.Deprecated }
func (s *Symbol) Experimental() bool { return s.base.contribution.Experimental }
func (s *Symbol) Virtual() bool      { return s.base.contribution.Virtual }
func (s *Symbol) Abstract() bool     { return s.base.contribution.Abstract }
func (s *Symbol) Extension() bool    { return s.base.contribution.Extension }

// IsExclusiveFor only applies within the symbol's own namespace
func (s *Symbol) IsExclusiveFor(namespace types.Namespace, kind types.Kind) bool {
	if namespace == "" || namespace != s.base.namespace {
		return false
	}
	if s.base.IsExclusiveFor(namespace, kind) {
		return true
	}
	for _, sup := range s.superContributions() {
		if sup.IsExclusiveFor(namespace, kind) {
			return true
		}
	}
	return false
}

// NestedSymbols matches name against the symbol's own nested contributions,
// then against those inherited from its supers.
func (s *Symbol) NestedSymbols(registry types.Registry, namespace types.Namespace, kind types.Kind, name string, stack []types.Symbol) []types.Symbol {
	reg := s.registryFor(registry)
	host := s.base.RegistryQueryContribution()
	wrappers := s.wrapNested(host.Nested(types.QualifiedKind{Namespace: namespace, Kind: kind}), namespace, kind)

	out := MatchWrappers(reg, wrappers, namespace, kind, name, stack, false)
	for _, sup := range s.superContributions() {
		if scope, ok := sup.(types.Scope); ok {
			out = append(out, scope.NestedSymbols(reg, namespace, kind, name, stack)...)
		}
	}
	return out
}

func (s *Symbol) NestedCompletions(registry types.Registry, namespace types.Namespace, kind types.Kind, name string, position int, stack []types.Symbol) []types.CompletionItem {
	reg := s.registryFor(registry)
	host := s.base.RegistryQueryContribution()
	wrappers := s.wrapNested(host.Nested(types.QualifiedKind{Namespace: namespace, Kind: kind}), namespace, kind)

	out := CompleteWrappers(reg, wrappers, namespace, kind, name, position, stack)
	for _, sup := range s.superContributions() {
		if scope, ok := sup.(types.Scope); ok {
			out = append(out, scope.NestedCompletions(reg, namespace, kind, name, position, stack)...)
		}
	}
	return out
}

// NestedKinds lists the kinds the symbol declares nested contributions for
func (s *Symbol) NestedKinds() []types.QualifiedKind {
	return sortedKinds(s.base.RegistryQueryContribution().Contributions)
}

func (s *Symbol) wrapNested(cs []*Contribution, namespace types.Namespace, kind types.Kind) []*Wrapper {
	out := make([]*Wrapper, 0, len(cs))
	for _, c := range cs {
		out = append(out, Wrap(c, s.base.origin, s.base.root, namespace, kind))
	}
	return out
}

func (s *Symbol) registryFor(registry types.Registry) Registry {
	if r, ok := registry.(Registry); ok {
		return r
	}
	return s.registry
}

// CreatePointer re-resolves the registry and the wrapper; the symbol is gone
// when either is.
func (s *Symbol) CreatePointer() types.Pointer[types.Symbol] {
	registryPtr := s.registry.Detach()
	basePtr := s.base.CreatePointer()
	return types.PointerFunc[types.Symbol](func() (types.Symbol, bool) {
		registry, ok := registryPtr.Dereference()
		if !ok {
			return nil, false
		}
		base, ok := basePtr.Dereference()
		if !ok {
			return nil, false
		}
		return base.WithRegistryContext(registry), true
	})
}

func (s *Symbol) String() string {
	return s.base.String()
}
