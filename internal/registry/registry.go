package registry

import (
	"sync/atomic"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Registry is an immutable snapshot of the catalog's containers. Queries
// resolve against the enclosing scopes on the context stack first, then
// against the top-level contributions of every container.
type Registry struct {
	catalog    *Catalog
	containers []*Container
	modCount   int64
	names      *names.Provider

	index atomic.Pointer[topLevelIndex]
}

var _ webtypes.Registry = (*Registry)(nil)

// topLevelIndex groups top-level wrappers by kind; static wrappers are also
// keyed by their storage names.
type topLevelIndex struct {
	static   map[types.QualifiedKind]map[string][]*webtypes.Wrapper
	patterns map[types.QualifiedKind][]*webtypes.Wrapper
	all      map[types.QualifiedKind][]*webtypes.Wrapper
}

func newRegistry(catalog *Catalog, containers []*Container, modCount int64) *Registry {
	layers := make([]names.Rules, 0, len(containers)+len(catalog.rules))
	for _, c := range containers {
		layers = append(layers, c.Rules())
	}
	layers = append(layers, catalog.rules...)

	return &Registry{
		catalog:    catalog,
		containers: containers,
		modCount:   modCount,
		names:      names.NewProvider(catalog.framework, catalog.frameworks, layers),
	}
}

// Containers returns the containers of the snapshot
func (r *Registry) Containers() []*Container { return r.containers }

// NamesProvider returns the names provider the snapshot resolves names with
func (r *Registry) NamesProvider() *names.Provider { return r.names }

// ModificationCount is the catalog modification count the snapshot was taken at
func (r *Registry) ModificationCount() int64 { return r.modCount }

// Kinds lists every top-level kind with at least one contribution
func (r *Registry) Kinds() []types.QualifiedKind {
	idx := r.topLevel()
	out := make([]types.QualifiedKind, 0, len(idx.all))
	for qk := range idx.all {
		out = append(out, qk)
	}
	sortKinds(out)
	return out
}

// Wrappers returns the top-level wrappers of qk across containers
func (r *Registry) Wrappers(qk types.QualifiedKind) []*webtypes.Wrapper {
	return r.topLevel().all[qk]
}

func (r *Registry) Names(namespace types.Namespace, kind types.Kind, name string, target types.NameTarget) []string {
	return r.names.Names(namespace, kind, name, target)
}

// NameMatch walks the scopes on the stack innermost first, stopping at a
// scope that is exclusive for namespace/kind, then matches top-level
// contributions. Abstract symbols are never returned.
func (r *Registry) NameMatch(namespace types.Namespace, kind types.Kind, name string, stack []types.Symbol) []types.Symbol {
	var out []types.Symbol
	for i := len(stack) - 1; i >= 0; i-- {
		scope, ok := stack[i].(types.Scope)
		if !ok {
			continue
		}
		out = append(out, scope.NestedSymbols(r, namespace, kind, name, stack)...)
		if stack[i].IsExclusiveFor(namespace, kind) {
			return out
		}
	}
	return append(out, r.matchTopLevel(namespace, kind, name, stack, false)...)
}

// CodeCompletion lists proposals from the same scopes NameMatch consults.
// Proposals are not filtered by the typed prefix.
func (r *Registry) CodeCompletion(namespace types.Namespace, kind types.Kind, name string, position int, stack []types.Symbol) []types.CompletionItem {
	var out []types.CompletionItem
	for i := len(stack) - 1; i >= 0; i-- {
		scope, ok := stack[i].(types.Scope)
		if !ok {
			continue
		}
		out = append(out, scope.NestedCompletions(r, namespace, kind, name, position, stack)...)
		if stack[i].IsExclusiveFor(namespace, kind) {
			return out
		}
	}
	qk := types.QualifiedKind{Namespace: namespace, Kind: kind}
	return append(out, webtypes.CompleteWrappers(r, r.topLevel().all[qk], namespace, kind, name, position, stack)...)
}

// ResolveReference resolves path from the top level, abstract symbols
// included. Kind references resolve to nothing.
func (r *Registry) ResolveReference(path webtypes.Path, stack []types.Symbol) []types.Symbol {
	if len(path) == 0 || path.IsKindRef() {
		return nil
	}
	first := path[0]
	syms := r.matchTopLevel(first.Namespace, first.Kind, first.Name, stack, true)
	for _, seg := range path[1:] {
		var next []types.Symbol
		for _, sym := range syms {
			if scope, ok := sym.(types.Scope); ok {
				next = append(next, scope.NestedSymbols(r, seg.Namespace, seg.Kind, seg.Name, stack)...)
			}
		}
		syms = next
	}
	return syms
}

// Detach captures the container ids of the snapshot. The pointer is gone
// once any of those containers was removed or replaced.
func (r *Registry) Detach() types.Pointer[webtypes.Registry] {
	ids := make([]string, len(r.containers))
	for i, c := range r.containers {
		ids[i] = c.id
	}
	catalog, modCount := r.catalog, r.modCount

	return types.PointerFunc[webtypes.Registry](func() (webtypes.Registry, bool) {
		if current := catalog.Registry(); current.modCount == modCount {
			return current, true
		}
		containers := make([]*Container, 0, len(ids))
		for _, id := range ids {
			c, ok := catalog.Container(id)
			if !ok {
				return nil, false
			}
			containers = append(containers, c)
		}
		return newRegistry(catalog, containers, modCount), true
	})
}

func (r *Registry) matchTopLevel(namespace types.Namespace, kind types.Kind, name string,
	stack []types.Symbol, includeAbstract bool) []types.Symbol {
	idx := r.topLevel()
	qk := types.QualifiedKind{Namespace: namespace, Kind: kind}

	var candidates []*webtypes.Wrapper
	if statics := idx.static[qk]; statics != nil {
		seen := make(map[*webtypes.Wrapper]bool)
		for _, key := range r.Names(namespace, kind, name, types.TargetQuery) {
			for _, w := range statics[key] {
				if !seen[w] {
					seen[w] = true
					candidates = append(candidates, w)
				}
			}
		}
	}
	candidates = append(candidates, idx.patterns[qk]...)
	return webtypes.MatchWrappers(r, candidates, namespace, kind, name, stack, includeAbstract)
}

func (r *Registry) topLevel() *topLevelIndex {
	if idx := r.index.Load(); idx != nil {
		return idx
	}
	idx := &topLevelIndex{
		static:   make(map[types.QualifiedKind]map[string][]*webtypes.Wrapper),
		patterns: make(map[types.QualifiedKind][]*webtypes.Wrapper),
		all:      make(map[types.QualifiedKind][]*webtypes.Wrapper),
	}
	for _, c := range r.containers {
		for _, qk := range c.Kinds() {
			for _, w := range c.Wrappers(qk) {
				idx.all[qk] = append(idx.all[qk], w)
				if w.Variant() == webtypes.VariantPattern {
					idx.patterns[qk] = append(idx.patterns[qk], w)
					continue
				}
				byKey := idx.static[qk]
				if byKey == nil {
					byKey = make(map[string][]*webtypes.Wrapper)
					idx.static[qk] = byKey
				}
				for _, key := range r.Names(qk.Namespace, qk.Kind, w.Name(), types.TargetStorageKey) {
					byKey[key] = append(byKey[key], w)
				}
			}
		}
	}
	r.index.CompareAndSwap(nil, idx)
	return r.index.Load()
}
