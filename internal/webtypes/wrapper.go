package webtypes

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/internal/patterns"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

const (
	noName      = "<no-name>"
	patternName = "<pattern>"
)

// Variant is the closed set of contribution shapes a Wrapper handles
type Variant int

const (
	VariantStatic Variant = iota
	VariantPattern
	VariantLegacyVueDirective
	VariantLegacyVueComponent
)

func (v Variant) String() string {
	switch v {
	case VariantPattern:
		return "pattern"
	case VariantLegacyVueDirective:
		return "legacy-vue-directive"
	case VariantLegacyVueComponent:
		return "legacy-vue-component"
	default:
		return "static"
	}
}

// Root is the container a contribution was loaded into
type Root interface {
	ID() string
	CreatePointer() types.Pointer[Root]
}

// Wrapper binds a contribution to its origin, root container and place in
// the symbol space. It is immutable apart from memoized derived state.
type Wrapper struct {
	contribution *Contribution
	origin       *Origin
	root         Root
	namespace    types.Namespace
	kind         types.Kind
	variant      Variant

	pattern       atomic.Pointer[compiledPattern]
	exclusive     atomic.Pointer[map[types.QualifiedKind]struct{}]
	registryQuery atomic.Pointer[Contribution]
}

type compiledPattern struct {
	pattern patterns.Pattern
}

// Wrap chooses the variant for c. A pattern takes priority over the legacy
// Vue name heuristics.
func Wrap(c *Contribution, origin *Origin, root Root, namespace types.Namespace, kind types.Kind) *Wrapper {
	w := &Wrapper{
		contribution: c,
		origin:       origin,
		root:         root,
		namespace:    namespace,
		kind:         kind,
	}
	switch {
	case c.Pattern != nil:
		w.variant = VariantPattern
	case strings.HasPrefix(c.Name, legacyDirectivePrefix) &&
		origin.Framework() == names.FrameworkVue &&
		kind == types.KindAttributes:
		w.variant = VariantLegacyVueDirective
		w.kind = types.KindVueDirectives
	case c.Name != "" && kind == types.KindVueLegacyComponents && c.Shape == ShapeHTMLElement:
		w.variant = VariantLegacyVueComponent
		w.kind = types.KindVueComponents
	default:
		w.variant = VariantStatic
	}
	return w
}

func (w *Wrapper) Contribution() *Contribution { return w.contribution }
func (w *Wrapper) Origin() *Origin             { return w.origin }
func (w *Wrapper) Root() Root                  { return w.root }
func (w *Wrapper) Namespace() types.Namespace  { return w.namespace }
func (w *Wrapper) Kind() types.Kind            { return w.kind }
func (w *Wrapper) Variant() Variant            { return w.variant }

// Name is the name the wrapper is matched by
func (w *Wrapper) Name() string {
	switch w.variant {
	case VariantPattern:
		return patternName
	case VariantLegacyVueDirective:
		return strings.TrimPrefix(w.contribution.Name, legacyDirectivePrefix)
	case VariantLegacyVueComponent:
		if strings.Contains(w.contribution.Name, "-") {
			return toVueComponentPascalName(w.contribution.Name)
		}
		return w.contribution.Name
	default:
		if w.contribution.Name == "" {
			return noName
		}
		return w.contribution.Name
	}
}

// ContributionName is the name declared by the contribution
func (w *Wrapper) ContributionName() string {
	if w.variant == VariantLegacyVueDirective {
		return w.Name()
	}
	if w.contribution.Name == "" {
		return noName
	}
	return w.contribution.Name
}

// Pattern returns the compiled name pattern, or nil for non-pattern variants
// and patterns that fail to compile.
func (w *Wrapper) Pattern() patterns.Pattern {
	if w.variant != VariantPattern {
		return nil
	}
	if cp := w.pattern.Load(); cp != nil {
		return cp.pattern
	}
	p, err := w.contribution.Pattern.Compile(w.namespace)
	if err != nil {
		log.Warn().Err(err).Str("library", w.origin.Library()).Str("kind", string(w.kind)).Msg("Skipping invalid name pattern")
		p = nil
	}
	w.pattern.CompareAndSwap(nil, &compiledPattern{pattern: p})
	return w.pattern.Load().pattern
}

// RegistryQueryContribution is the contribution nested symbol queries run against
func (w *Wrapper) RegistryQueryContribution() *Contribution {
	if w.variant != VariantLegacyVueComponent {
		return w.contribution
	}
	if c := w.registryQuery.Load(); c != nil {
		return c
	}
	w.registryQuery.CompareAndSwap(nil, convertToComponentContribution(w.contribution))
	return w.registryQuery.Load()
}

// IsExclusiveFor reports whether the contribution declares exclusive
// contributions for namespace/kind. Malformed paths are ignored.
func (w *Wrapper) IsExclusiveFor(namespace types.Namespace, kind types.Kind) bool {
	set := w.exclusive.Load()
	if set == nil {
		parsed := parseExclusive(w.contribution.ExclusiveContributions)
		w.exclusive.CompareAndSwap(nil, &parsed)
		set = w.exclusive.Load()
	}
	_, ok := (*set)[types.QualifiedKind{Namespace: namespace, Kind: kind}]
	return ok
}

// parseExclusive keeps paths of the form /namespace/kind with a known namespace
func parseExclusive(paths []string) map[types.QualifiedKind]struct{} {
	out := make(map[types.QualifiedKind]struct{}, len(paths))
	for _, path := range paths {
		if !strings.HasPrefix(path, "/") {
			continue
		}
		slash := strings.Index(path[1:], "/") + 1
		if slash == 0 || strings.LastIndex(path, "/") != slash {
			continue
		}
		ns, ok := types.ParseNamespace(path[1:slash])
		if !ok {
			continue
		}
		out[types.QualifiedKind{Namespace: ns, Kind: types.Kind(path[slash+1:])}] = struct{}{}
	}
	return out
}

// WithRegistryContext binds the wrapper to registry, producing a queryable symbol
func (w *Wrapper) WithRegistryContext(registry Registry) *Symbol {
	return &Symbol{base: w, registry: registry}
}

// CreatePointer re-wraps the same contribution against the re-resolved root
func (w *Wrapper) CreatePointer() types.Pointer[*Wrapper] {
	rootPtr := w.root.CreatePointer()
	c, origin, namespace, kind, variant := w.contribution, w.origin, w.namespace, w.kind, w.variant
	return types.PointerFunc[*Wrapper](func() (*Wrapper, bool) {
		root, ok := rootPtr.Dereference()
		if !ok {
			return nil, false
		}
		return &Wrapper{
			contribution: c,
			origin:       origin,
			root:         root,
			namespace:    namespace,
			kind:         kind,
			variant:      variant,
		}, true
	})
}

func (w *Wrapper) String() string {
	switch w.variant {
	case VariantPattern:
		var prefixes []string
		if p := w.Pattern(); p != nil {
			prefixes = uniqueStrings(p.StaticPrefixes())
		}
		return fmt.Sprintf("%s/%v... <pattern>", w.kind, prefixes)
	case VariantLegacyVueDirective:
		return fmt.Sprintf("%s/%s <static-legacy>", w.kind, w.Name())
	case VariantLegacyVueComponent:
		return fmt.Sprintf("%s/%s <legacy static>", w.kind, w.Name())
	default:
		return fmt.Sprintf("%s/%s <static>", w.kind, w.Name())
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
