package names

import (
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// NameFunc maps a raw symbol name to one or more textual forms
type NameFunc func(name string) []string

// RuleKey selects a conversion rule. An empty Framework matches queries made
// without a framework.
type RuleKey struct {
	Framework string
	Namespace types.Namespace
	Kind      types.Kind
}

// Rules is one configuration layer of name conversion rules
type Rules interface {
	CanonicalNames() map[RuleKey]NameFunc
	MatchNames() map[RuleKey]NameFunc
	NameVariants() map[RuleKey]NameFunc
	ModificationCount() int64
	CreatePointer() types.Pointer[Rules]
}

// StaticRules is an immutable rules layer
type StaticRules struct {
	canonical map[RuleKey]NameFunc
	match     map[RuleKey]NameFunc
	variants  map[RuleKey]NameFunc
}

// NewStaticRules copies the given tables into an immutable layer. Nil maps are allowed.
func NewStaticRules(canonical, match, variants map[RuleKey]NameFunc) *StaticRules {
	return &StaticRules{
		canonical: copyTable(canonical),
		match:     copyTable(match),
		variants:  copyTable(variants),
	}
}

func copyTable(in map[RuleKey]NameFunc) map[RuleKey]NameFunc {
	out := make(map[RuleKey]NameFunc, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (r *StaticRules) CanonicalNames() map[RuleKey]NameFunc { return r.canonical }
func (r *StaticRules) MatchNames() map[RuleKey]NameFunc     { return r.match }
func (r *StaticRules) NameVariants() map[RuleKey]NameFunc   { return r.variants }

// ModificationCount is always zero; static rules never change
func (r *StaticRules) ModificationCount() int64 { return 0 }

func (r *StaticRules) CreatePointer() types.Pointer[Rules] {
	return types.Hard[Rules](r)
}

// table is a merged lookup built from several layers
type table map[RuleKey]NameFunc

// mergeTables builds the three lookup tables. Layers are ordered most specific
// first and the first layer defining a key wins.
func mergeTables(layers []Rules) (canonical, match, variants table) {
	canonical, match, variants = table{}, table{}, table{}
	for _, layer := range layers {
		putIfAbsent(canonical, layer.CanonicalNames())
		putIfAbsent(match, layer.MatchNames())
		putIfAbsent(variants, layer.NameVariants())
	}
	return canonical, match, variants
}

func putIfAbsent(dst table, src map[RuleKey]NameFunc) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
