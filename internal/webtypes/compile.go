package webtypes

import (
	"fmt"

	"github.com/dshills/websymbols-mcp/internal/patterns"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Compile builds the matcher for a declared name pattern. Relative item
// references resolve against namespace.
func (np *NamePattern) Compile(namespace types.Namespace) (patterns.Pattern, error) {
	var items patterns.ItemsProvider
	if len(np.Items) > 0 {
		refs, err := newReferenceItems(np.Items, namespace)
		if err != nil {
			return nil, err
		}
		items = refs
	}

	var p patterns.Pattern
	switch {
	case np.Item:
		p = patterns.NewItem(np.DisplayName)
	case np.Template != nil:
		elements, err := compileAll(np.Template, namespace)
		if err != nil {
			return nil, err
		}
		p = patterns.NewSequence(items, elements...)
	case np.Or != nil:
		options, err := compileAll(np.Or, namespace)
		if err != nil {
			return nil, err
		}
		p = patterns.NewOptions(items, options...)
	case items != nil:
		p = patterns.NewSequence(items, patterns.NewItem(np.DisplayName))
	case np.Regex != "":
		re, err := patterns.NewRegex(np.Regex, np.CaseSensitive)
		if err != nil {
			return nil, err
		}
		p = re
	case np.Static != "":
		p = patterns.NewStatic(np.Static)
	default:
		return nil, ErrEmptyPattern
	}

	if !np.Required {
		return patterns.NewOptional(p), nil
	}
	return p, nil
}

func compileAll(nps []*NamePattern, namespace types.Namespace) ([]patterns.Pattern, error) {
	out := make([]patterns.Pattern, 0, len(nps))
	for _, np := range nps {
		p, err := np.Compile(namespace)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type itemsReference struct {
	path Path
	ref  Reference
}

// referenceItems resolves pattern items through registry references such as
// "/html/attributes" or "/html/elements/div/attributes".
type referenceItems struct {
	refs []itemsReference
}

func newReferenceItems(refs []Reference, namespace types.Namespace) (*referenceItems, error) {
	out := &referenceItems{refs: make([]itemsReference, 0, len(refs))}
	for _, ref := range refs {
		path, err := ParsePath(ref.Path, namespace)
		if err != nil {
			return nil, err
		}
		if !path.IsKindRef() {
			return nil, fmt.Errorf("%w: items reference %q must end with a kind", ErrInvalidPath, ref.Path)
		}
		out.refs = append(out.refs, itemsReference{path: path, ref: ref})
	}
	return out, nil
}

func (r *referenceItems) MatchName(name string, stack []types.Symbol, registry types.Registry) []types.Symbol {
	var out []types.Symbol
	for _, ref := range r.refs {
		last := ref.path.Last()
		for _, sym := range r.lookup(ref, stack, registry, func(scope types.Scope) []types.Symbol {
			return scope.NestedSymbols(registry, last.Namespace, last.Kind, name, stack)
		}, func() []types.Symbol {
			return registry.NameMatch(last.Namespace, last.Kind, name, stack)
		}) {
			if sym.Virtual() && !ref.ref.IncludeVirtual {
				continue
			}
			out = append(out, sym)
		}
	}
	return out
}

func (r *referenceItems) CodeCompletion(name string, position int, stack []types.Symbol, registry types.Registry) []types.CompletionItem {
	var out []types.CompletionItem
	for _, ref := range r.refs {
		last := ref.path.Last()
		if len(ref.path) == 1 {
			out = append(out, registry.CodeCompletion(last.Namespace, last.Kind, name, position, stack)...)
			continue
		}
		for _, owner := range r.owners(ref, stack, registry) {
			if scope, ok := owner.(types.Scope); ok {
				out = append(out, scope.NestedCompletions(registry, last.Namespace, last.Kind, name, position, stack)...)
			}
		}
	}
	return out
}

func (r *referenceItems) SymbolKinds(types.Symbol) []types.QualifiedKind {
	out := make([]types.QualifiedKind, 0, len(r.refs))
	for _, ref := range r.refs {
		last := ref.path.Last()
		out = append(out, types.QualifiedKind{Namespace: last.Namespace, Kind: last.Kind})
	}
	return out
}

func (r *referenceItems) lookup(ref itemsReference, stack []types.Symbol, registry types.Registry,
	nested func(types.Scope) []types.Symbol, topLevel func() []types.Symbol) []types.Symbol {
	if len(ref.path) == 1 {
		return topLevel()
	}
	var out []types.Symbol
	for _, owner := range r.owners(ref, stack, registry) {
		if scope, ok := owner.(types.Scope); ok {
			out = append(out, nested(scope)...)
		}
	}
	return out
}

// owners resolves the symbols named by every segment but the last
func (r *referenceItems) owners(ref itemsReference, stack []types.Symbol, registry types.Registry) []types.Symbol {
	wr, ok := registry.(Registry)
	if !ok {
		return nil
	}
	return wr.ResolveReference(ref.path.Owner(), stack)
}
