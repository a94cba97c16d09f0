package names

import (
	"slices"
	"strings"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Provider resolves raw symbol names into the variants needed for storage,
// querying and completion.
type Provider struct {
	framework     string
	frameworks    Frameworks
	configuration []Rules

	canonical table
	match     table
	variants  table
}

// NewProvider builds a provider for framework (may be empty) over the given
// configuration layers, most specific first. frameworks may be nil.
func NewProvider(framework string, frameworks Frameworks, configuration []Rules) *Provider {
	layers := slices.Clone(configuration)
	canonical, match, variants := mergeTables(layers)
	return &Provider{
		framework:     framework,
		frameworks:    frameworks,
		configuration: layers,
		canonical:     canonical,
		match:         match,
		variants:      variants,
	}
}

// Framework returns the framework the provider was built for
func (p *Provider) Framework() string {
	return p.framework
}

func (p *Provider) override() Framework {
	if p.framework == "" || p.frameworks == nil {
		return nil
	}
	return p.frameworks.Framework(p.framework)
}

// Names returns the forms of name for target. The result is never empty.
func (p *Provider) Names(namespace types.Namespace, kind types.Kind, name string, target types.NameTarget) []string {
	if fw := p.override(); fw != nil {
		if result := fw.Names(namespace, kind, name, target); len(result) > 0 {
			return result
		}
	}

	key := RuleKey{Framework: p.framework, Namespace: namespace, Kind: kind}
	switch target {
	case types.TargetCompletionVariants:
		if fn, ok := p.variants[key]; ok {
			return fn(name)
		}
		return []string{name}
	case types.TargetStorageKey:
		if fn, ok := p.canonical[key]; ok {
			return fn(name)
		}
	case types.TargetQuery:
		fn, ok := p.match[key]
		if !ok {
			fn, ok = p.canonical[key]
		}
		if ok {
			return fn(name)
		}
	}

	if namespace == types.NamespaceJS {
		return []string{name}
	}
	return []string{strings.ToLower(name)}
}

// AdjustRename maps one observed occurrence of oldName onto the matching
// variant of newName. When the occurrence is not a known variant, or the two
// names have a different number of variants, newName is returned unchanged.
func (p *Provider) AdjustRename(namespace types.Namespace, kind types.Kind, oldName, newName, occurrence string) string {
	if oldName == occurrence {
		return newName
	}

	oldVariants := p.Names(namespace, kind, oldName, types.TargetQuery)
	index := slices.Index(oldVariants, occurrence)
	if index < 0 {
		return newName
	}

	newVariants := p.Names(namespace, kind, newName, types.TargetQuery)
	if len(oldVariants) == len(newVariants) {
		return newVariants[index]
	}
	return newName
}

// WithRules returns a provider where rules take precedence over the current configuration
func (p *Provider) WithRules(rules []Rules) *Provider {
	layers := make([]Rules, 0, len(rules)+len(p.configuration))
	layers = append(layers, rules...)
	layers = append(layers, p.configuration...)
	return NewProvider(p.framework, p.frameworks, layers)
}

// ModificationCount sums the modification counts of all layers
func (p *Provider) ModificationCount() int64 {
	var total int64
	for _, layer := range p.configuration {
		total += layer.ModificationCount()
	}
	return total
}

// Equal reports whether both providers were built from the same framework and layers
func (p *Provider) Equal(other *Provider) bool {
	if other == nil {
		return false
	}
	if p.framework != other.framework || len(p.configuration) != len(other.configuration) {
		return false
	}
	for i := range p.configuration {
		if p.configuration[i] != other.configuration[i] {
			return false
		}
	}
	return true
}

// CreatePointer captures the framework and pointers to every layer. The
// pointer is gone once any layer is.
func (p *Provider) CreatePointer() types.Pointer[*Provider] {
	layers := make([]types.Pointer[Rules], len(p.configuration))
	for i, layer := range p.configuration {
		layers[i] = layer.CreatePointer()
	}
	framework, frameworks := p.framework, p.frameworks

	return types.PointerFunc[*Provider](func() (*Provider, bool) {
		configuration, ok := types.DereferenceAll(layers)
		if !ok {
			return nil, false
		}
		return NewProvider(framework, frameworks, configuration), true
	})
}
