package names

import (
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

var (
	htmlAttrs = RuleKey{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}
	jsProps   = RuleKey{Namespace: types.NamespaceJS, Kind: types.KindProperties}
)

func constant(values ...string) NameFunc {
	return func(string) []string { return values }
}

func TestNames_DefaultFallback(t *testing.T) {
	p := NewProvider("", nil, nil)

	assert.Equal(t, []string{"fooBar"}, p.Names(types.NamespaceJS, types.KindProperties, "fooBar", types.TargetQuery))
	assert.Equal(t, []string{"foobar"}, p.Names(types.NamespaceHTML, types.KindAttributes, "fooBar", types.TargetQuery))
	assert.Equal(t, []string{"foobar"}, p.Names(types.NamespaceCSS, types.KindProperties, "FooBar", types.TargetStorageKey))
	assert.Equal(t, []string{"FooBar"}, p.Names(types.NamespaceHTML, types.KindAttributes, "FooBar", types.TargetCompletionVariants))
}

func TestNames_TargetDispatch(t *testing.T) {
	rules := NewStaticRules(
		map[RuleKey]NameFunc{htmlAttrs: constant("canonical")},
		map[RuleKey]NameFunc{htmlAttrs: constant("match-1", "match-2")},
		map[RuleKey]NameFunc{htmlAttrs: constant("variant")},
	)
	p := NewProvider("", nil, []Rules{rules})

	assert.Equal(t, []string{"canonical"}, p.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetStorageKey))
	assert.Equal(t, []string{"match-1", "match-2"}, p.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetQuery))
	assert.Equal(t, []string{"variant"}, p.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetCompletionVariants))
}

func TestNames_QueryFallsBackToCanonical(t *testing.T) {
	rules := NewStaticRules(map[RuleKey]NameFunc{htmlAttrs: constant("canonical")}, nil, nil)
	p := NewProvider("", nil, []Rules{rules})

	assert.Equal(t, []string{"canonical"}, p.Names(types.NamespaceHTML, types.KindAttributes, "X", types.TargetQuery))
}

func TestNames_StorageKeyIgnoresMatchTable(t *testing.T) {
	rules := NewStaticRules(nil, map[RuleKey]NameFunc{htmlAttrs: constant("match")}, nil)
	p := NewProvider("", nil, []Rules{rules})

	assert.Equal(t, []string{"x"}, p.Names(types.NamespaceHTML, types.KindAttributes, "X", types.TargetStorageKey))
	assert.Equal(t, []string{"match"}, p.Names(types.NamespaceHTML, types.KindAttributes, "X", types.TargetQuery))
}

func TestNames_FirstLayerWins(t *testing.T) {
	specific := NewStaticRules(map[RuleKey]NameFunc{htmlAttrs: constant("specific")}, nil, nil)
	general := NewStaticRules(
		map[RuleKey]NameFunc{htmlAttrs: constant("general"), jsProps: constant("general-js")},
		nil, nil,
	)
	p := NewProvider("", nil, []Rules{specific, general})

	assert.Equal(t, []string{"specific"}, p.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetStorageKey))
	assert.Equal(t, []string{"general-js"}, p.Names(types.NamespaceJS, types.KindProperties, "x", types.TargetStorageKey))
}

func TestNames_FrameworkKeyedRules(t *testing.T) {
	key := RuleKey{Framework: "vue", Namespace: types.NamespaceHTML, Kind: types.KindAttributes}
	rules := NewStaticRules(map[RuleKey]NameFunc{key: constant("vue")}, nil, nil)

	withFramework := NewProvider("vue", nil, []Rules{rules})
	without := NewProvider("", nil, []Rules{rules})

	assert.Equal(t, []string{"vue"}, withFramework.Names(types.NamespaceHTML, types.KindAttributes, "X", types.TargetStorageKey))
	assert.Equal(t, []string{"x"}, without.Names(types.NamespaceHTML, types.KindAttributes, "X", types.TargetStorageKey))
}

type stubFramework struct {
	result []string
}

func (f stubFramework) ID() string { return "stub" }

func (f stubFramework) Names(types.Namespace, types.Kind, string, types.NameTarget) []string {
	return f.result
}

func TestNames_FrameworkOverrideShortCircuits(t *testing.T) {
	rules := NewStaticRules(nil, nil, map[RuleKey]NameFunc{
		{Framework: "stub", Namespace: types.NamespaceHTML, Kind: types.KindAttributes}: constant("rule"),
	})

	p := NewProvider("stub", NewFrameworkSet(stubFramework{result: []string{"override"}}), []Rules{rules})
	assert.Equal(t, []string{"override"}, p.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetCompletionVariants))

	empty := NewProvider("stub", NewFrameworkSet(stubFramework{}), []Rules{rules})
	assert.Equal(t, []string{"rule"}, empty.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetCompletionVariants))
}

func TestNames_CompletionVariantsNeverEmpty(t *testing.T) {
	p := NewProvider("vue", DefaultFrameworks(), nil)
	for _, ns := range []types.Namespace{types.NamespaceHTML, types.NamespaceCSS, types.NamespaceJS} {
		for _, kind := range []types.Kind{types.KindElements, types.KindAttributes, types.KindVueComponents} {
			for _, name := range []string{"", "a", "my-component", "MyComponent"} {
				assert.NotEmpty(t, p.Names(ns, kind, name, types.TargetCompletionVariants), "%s/%s %q", ns, kind, name)
			}
		}
	}
}

func TestNames_Idempotent(t *testing.T) {
	rules := FromConventions("", ConventionTables{
		Match: map[types.QualifiedKind][]Convention{
			{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}: {ConventionKebabCase, ConventionCamelCase},
		},
	})
	p := NewProvider("", nil, []Rules{rules})

	first := p.Names(types.NamespaceHTML, types.KindAttributes, "fooBar", types.TargetQuery)
	second := p.Names(types.NamespaceHTML, types.KindAttributes, "fooBar", types.TargetQuery)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"foo-bar", "fooBar"}, first)
}

func TestAdjustRename(t *testing.T) {
	rules := FromConventions("", ConventionTables{
		Match: map[types.QualifiedKind][]Convention{
			{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}: {ConventionKebabCase, ConventionCamelCase},
		},
	})
	p := NewProvider("", nil, []Rules{rules})

	tests := []struct {
		name       string
		oldName    string
		newName    string
		occurrence string
		want       string
	}{
		{"identity occurrence", "fooBar", "bazQux", "fooBar", "bazQux"},
		{"kebab occurrence", "fooBar", "bazQux", "foo-bar", "baz-qux"},
		{"unknown occurrence", "fooBar", "bazQux", "FOO", "bazQux"},
		{"camel occurrence", "foo-bar", "baz-qux", "fooBar", "bazQux"},
		// "single" has one distinct variant, "foo-bar" has two
		{"variant count differs", "foo-bar", "single", "fooBar", "single"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.AdjustRename(types.NamespaceHTML, types.KindAttributes, tt.oldName, tt.newName, tt.occurrence)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithRules_PrependsLayers(t *testing.T) {
	base := NewStaticRules(map[RuleKey]NameFunc{htmlAttrs: constant("base")}, nil, nil)
	extra := NewStaticRules(map[RuleKey]NameFunc{htmlAttrs: constant("extra")}, nil, nil)

	p := NewProvider("", nil, []Rules{base})
	q := p.WithRules([]Rules{extra})

	assert.Equal(t, []string{"base"}, p.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetStorageKey))
	assert.Equal(t, []string{"extra"}, q.Names(types.NamespaceHTML, types.KindAttributes, "x", types.TargetStorageKey))
	assert.False(t, p.Equal(q))
}

type countingRules struct {
	*StaticRules
	count int64
	gone  atomic.Bool
}

func (r *countingRules) ModificationCount() int64 { return r.count }

func (r *countingRules) CreatePointer() types.Pointer[Rules] {
	return types.PointerFunc[Rules](func() (Rules, bool) {
		if r.gone.Load() {
			return nil, false
		}
		return r, true
	})
}

func TestModificationCount(t *testing.T) {
	a := &countingRules{StaticRules: NewStaticRules(nil, nil, nil), count: 3}
	b := &countingRules{StaticRules: NewStaticRules(nil, nil, nil), count: 4}
	p := NewProvider("", nil, []Rules{a, b})
	assert.Equal(t, int64(7), p.ModificationCount())
}

func TestCreatePointer(t *testing.T) {
	layer := &countingRules{StaticRules: NewStaticRules(map[RuleKey]NameFunc{htmlAttrs: constant("x")}, nil, nil)}
	p := NewProvider("vue", nil, []Rules{layer})

	ptr := p.CreatePointer()
	restored, ok := ptr.Dereference()
	require.True(t, ok)
	assert.True(t, p.Equal(restored))
	assert.Equal(t, "vue", restored.Framework())

	layer.gone.Store(true)
	_, ok = ptr.Dereference()
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	rules := NewStaticRules(nil, nil, nil)
	assert.True(t, NewProvider("vue", nil, []Rules{rules}).Equal(NewProvider("vue", nil, []Rules{rules})))
	assert.False(t, NewProvider("vue", nil, []Rules{rules}).Equal(NewProvider("", nil, []Rules{rules})))
	assert.False(t, NewProvider("", nil, nil).Equal(nil))
}

func TestVueFramework(t *testing.T) {
	p := NewProvider(FrameworkVue, DefaultFrameworks(), nil)

	assert.Equal(t, []string{"my-component"}, p.Names(types.NamespaceHTML, types.KindElements, "MyComponent", types.TargetStorageKey))
	assert.Equal(t, []string{"my-component"}, p.Names(types.NamespaceHTML, types.KindElements, "my-component", types.TargetQuery))
	assert.Equal(t, []string{"MyComponent", "my-component"},
		p.Names(types.NamespaceHTML, types.KindElements, "MyComponent", types.TargetCompletionVariants))
	assert.Equal(t, []string{"div"}, p.Names(types.NamespaceHTML, types.KindElements, "div", types.TargetCompletionVariants))
	// other kinds are untouched by the override
	assert.Equal(t, []string{strings.ToLower("MyAttr")},
		p.Names(types.NamespaceHTML, types.KindAttributes, "MyAttr", types.TargetQuery))
}
