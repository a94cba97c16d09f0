package registry

import (
	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Container holds the symbols contributed by one manifest. Containers are
// immutable; reloading a manifest replaces its container.
type Container struct {
	id       string
	source   string
	hash     string
	catalog  *Catalog
	manifest *webtypes.Manifest
	origin   *webtypes.Origin
	rules    *names.StaticRules
	wrappers map[types.QualifiedKind][]*webtypes.Wrapper
}

var _ webtypes.Root = (*Container)(nil)

func newContainer(catalog *Catalog, id, source, hash string, m *webtypes.Manifest, host webtypes.Host) *Container {
	c := &Container{
		id:       id,
		source:   source,
		hash:     hash,
		catalog:  catalog,
		manifest: m,
		origin:   webtypes.NewOrigin(m, host),
		wrappers: make(map[types.QualifiedKind][]*webtypes.Wrapper),
	}

	// name conversion declared by a framework library only applies to that framework
	framework := m.Framework
	if framework == "" {
		framework = catalog.framework
	}
	c.rules = names.FromConventions(framework, m.NameConversion)

	for _, qk := range m.Kinds() {
		for _, contribution := range m.Contributions[qk] {
			w := webtypes.Wrap(contribution, c.origin, c, qk.Namespace, qk.Kind)
			key := types.QualifiedKind{Namespace: qk.Namespace, Kind: w.Kind()}
			c.wrappers[key] = append(c.wrappers[key], w)
		}
	}
	return c
}

func (c *Container) ID() string                   { return c.id }
func (c *Container) Source() string               { return c.source }
func (c *Container) Hash() string                 { return c.hash }
func (c *Container) Manifest() *webtypes.Manifest { return c.manifest }
func (c *Container) Origin() *webtypes.Origin     { return c.origin }

// Wrappers returns the top-level wrappers stored under qk
func (c *Container) Wrappers(qk types.QualifiedKind) []*webtypes.Wrapper {
	return c.wrappers[qk]
}

// Kinds lists the kinds the container holds wrappers for
func (c *Container) Kinds() []types.QualifiedKind {
	out := make([]types.QualifiedKind, 0, len(c.wrappers))
	for qk := range c.wrappers {
		out = append(out, qk)
	}
	sortKinds(out)
	return out
}

// CreatePointer resolves the container by id; it is gone once the container
// is removed or replaced in the catalog.
func (c *Container) CreatePointer() types.Pointer[webtypes.Root] {
	catalog, id := c.catalog, c.id
	return types.PointerFunc[webtypes.Root](func() (webtypes.Root, bool) {
		found, ok := catalog.Container(id)
		if !ok {
			return nil, false
		}
		return found, true
	})
}

// Rules exposes the container's name conversion declarations as a rules layer
func (c *Container) Rules() names.Rules {
	return containerRules{c}
}

type containerRules struct {
	*Container
}

func (r containerRules) CanonicalNames() map[names.RuleKey]names.NameFunc {
	return r.rules.CanonicalNames()
}

func (r containerRules) MatchNames() map[names.RuleKey]names.NameFunc {
	return r.rules.MatchNames()
}

func (r containerRules) NameVariants() map[names.RuleKey]names.NameFunc {
	return r.rules.NameVariants()
}

func (r containerRules) ModificationCount() int64 {
	return r.rules.ModificationCount()
}

func (r containerRules) CreatePointer() types.Pointer[names.Rules] {
	catalog, id := r.catalog, r.id
	return types.PointerFunc[names.Rules](func() (names.Rules, bool) {
		found, ok := catalog.Container(id)
		if !ok {
			return nil, false
		}
		return found.Rules(), true
	})
}
