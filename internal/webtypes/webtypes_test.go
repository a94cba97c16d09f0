package webtypes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

type testRoot struct {
	id   string
	gone bool
}

func (r *testRoot) ID() string { return r.id }

func (r *testRoot) CreatePointer() types.Pointer[Root] {
	return types.PointerFunc[Root](func() (Root, bool) {
		if r.gone {
			return nil, false
		}
		return r, true
	})
}

// testRegistry resolves against the top-level wrappers of one manifest
type testRegistry struct {
	wrappers map[types.QualifiedKind][]*Wrapper
	names    *names.Provider
	root     *testRoot
	gone     bool
}

func load(t *testing.T, doc string) *testRegistry {
	t.Helper()
	m, err := Decode([]byte(doc))
	require.NoError(t, err)

	origin := NewOrigin(m, Host{Icons: FileIcons{}, Types: PlainTypes{}})
	r := &testRegistry{
		wrappers: make(map[types.QualifiedKind][]*Wrapper),
		names:    names.NewProvider(m.Framework, names.DefaultFrameworks(), nil),
		root:     &testRoot{id: "test"},
	}
	for qk, cs := range m.Contributions {
		for _, c := range cs {
			w := Wrap(c, origin, r.root, qk.Namespace, qk.Kind)
			key := types.QualifiedKind{Namespace: qk.Namespace, Kind: w.Kind()}
			r.wrappers[key] = append(r.wrappers[key], w)
		}
	}
	return r
}

func (r *testRegistry) NameMatch(ns types.Namespace, kind types.Kind, name string, stack []types.Symbol) []types.Symbol {
	return MatchWrappers(r, r.wrappers[types.QualifiedKind{Namespace: ns, Kind: kind}], ns, kind, name, stack, false)
}

func (r *testRegistry) CodeCompletion(ns types.Namespace, kind types.Kind, name string, position int, stack []types.Symbol) []types.CompletionItem {
	return CompleteWrappers(r, r.wrappers[types.QualifiedKind{Namespace: ns, Kind: kind}], ns, kind, name, position, stack)
}

func (r *testRegistry) Names(ns types.Namespace, kind types.Kind, name string, target types.NameTarget) []string {
	return r.names.Names(ns, kind, name, target)
}

func (r *testRegistry) ResolveReference(path Path, stack []types.Symbol) []types.Symbol {
	first := path[0]
	qk := types.QualifiedKind{Namespace: first.Namespace, Kind: first.Kind}
	syms := MatchWrappers(r, r.wrappers[qk], first.Namespace, first.Kind, first.Name, stack, true)
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

func (r *testRegistry) Detach() types.Pointer[Registry] {
	return types.PointerFunc[Registry](func() (Registry, bool) { return r, !r.gone })
}

func (r *testRegistry) one(t *testing.T, ns types.Namespace, kind types.Kind, name string) *Symbol {
	t.Helper()
	syms := r.NameMatch(ns, kind, name, nil)
	require.Len(t, syms, 1, "%s/%s/%s", ns, kind, name)
	sym, ok := syms[0].(*Symbol)
	require.True(t, ok)
	return sym
}

func (r *testRegistry) wrapper(t *testing.T, qk types.QualifiedKind, i int) *Wrapper {
	t.Helper()
	require.Greater(t, len(r.wrappers[qk]), i)
	return r.wrappers[qk][i]
}

const libraryManifest = `{
  "name": "lib",
  "version": "1.2.0",
  "description-markup": "markdown",
  "contributions": {
    "html": {
      "elements": [
        {
          "name": "base",
          "abstract": true,
          "description": "**Base** element",
          "doc-url": "https://example.com/base",
          "priority": "high",
          "description-sections": {"Intro": "from base", "Usage": "from base"},
          "exclusive-contributions": ["/html/attributes", "html/slots", "/css/properties/extra", "/nope/kind"]
        },
        {
          "name": "child",
          "extends": "/html/elements/base",
          "description-sections": {"Usage": "from child", "Since": "2.0"},
          "required": true,
          "attributes": [
            {"name": "foo", "required": true, "default": "1", "attribute-value": {"kind": "expression"}}
          ],
          "events": [{"name": "change"}]
        },
        {"name": "iconic", "icon": "data:x"},
        {"name": "inherits-icon", "extends": "/html/elements/iconic"},
        {"name": "loop-a", "extends": "/html/elements/loop-b"},
        {"name": "loop-b", "extends": "/html/elements/loop-a", "description": "from b"}
      ],
      "attributes": [
        {"name": "typed", "attribute-value": {"kind": "expression", "type": ["string", "number"]}},
        {"name": "derived", "extends": "/html/attributes/typed", "attribute-value": {"type": "boolean", "default": "false"}},
        {
          "pattern": {"items": "/js/events", "template": ["v-on:", "#item:event"]},
          "description": "Event listener",
          "deprecated": "use @ instead"
        }
      ]
    },
    "js": {
      "events": [{"name": "click", "priority": "low"}]
    }
  }
}`

func TestDecode_Manifest(t *testing.T) {
	m, err := Decode([]byte(libraryManifest))
	require.NoError(t, err)

	assert.Equal(t, "lib", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, MarkupMarkdown, m.DescriptionMarkup)
	assert.Equal(t, 10, m.Count())

	elements := m.Contributions[types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindElements}]
	require.Len(t, elements, 6)
	assert.Equal(t, ShapeHTMLElement, elements[0].Shape)
	require.NotNil(t, elements[0].Priority)
	assert.Equal(t, types.PriorityHigh, *elements[0].Priority)
	assert.Equal(t, []Section{{"Intro", "from base"}, {"Usage", "from base"}}, elements[0].DescriptionSections)

	child := elements[1]
	assert.Equal(t, "/html/elements/base", child.Extends.Path)
	attrs := child.Nested(types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindAttributes})
	require.Len(t, attrs, 1)
	assert.Equal(t, ShapeHTMLAttribute, attrs[0].Shape)
	assert.Len(t, child.Nested(types.QualifiedKind{Namespace: types.NamespaceJS, Kind: types.KindEvents}), 1)

	attributes := m.Contributions[types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}]
	require.Len(t, attributes, 3)
	pattern := attributes[2]
	assert.True(t, pattern.Deprecated)
	require.NotNil(t, pattern.Pattern)
	assert.Len(t, pattern.Pattern.Template, 2)
	assert.Equal(t, "v-on:", pattern.Pattern.Template[0].Static)
	assert.True(t, pattern.Pattern.Template[1].Item)
	assert.Equal(t, "event", pattern.Pattern.Template[1].DisplayName)
	assert.Equal(t, []Reference{{Path: "/js/events", IncludeVirtual: true}}, pattern.Pattern.Items)
}

func TestDecode_YAML(t *testing.T) {
	doc := `
name: yaml-lib
framework: vue
name-conversion:
  canonical-names:
    html/vue-components: [kebab-case]
contributions:
  html:
    tags:
      - name: my-comp
`
	m, err := Decode([]byte(doc))
	require.NoError(t, err)

	legacy := m.Contributions[types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindVueLegacyComponents}]
	require.Len(t, legacy, 1)
	assert.Equal(t, ShapeHTMLElement, legacy[0].Shape)
	assert.Equal(t, []names.Convention{names.ConventionKebabCase},
		m.NameConversion.Canonical[types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindVueComponents}])
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1, 2]`},
		{"bad priority", `{"contributions": {"html": {"elements": [{"name": "x", "priority": "urgent"}]}}}`},
		{"unknown namespace", `{"contributions": {"xml": {"elements": []}}}`},
		{"empty pattern", `{"contributions": {"html": {"attributes": [{"pattern": {"required": false}}]}}}`},
		{"bad markup", `{"description-markup": "rst"}`},
		{"syntax", `{"name": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}

	_, err := Decode([]byte("{\"contributions\": {\"html\": {\"elements\": [\n{\"name\": \"x\", \"priority\": \"urgent\"}]}}}"))
	var pe *types.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
}

func TestWrap_Dispatch(t *testing.T) {
	vue := &Origin{framework: names.FrameworkVue}
	plain := &Origin{}
	root := &testRoot{id: "r"}
	np := &NamePattern{Regex: "v-.*", Required: true}

	tests := []struct {
		name    string
		c       *Contribution
		origin  *Origin
		kind    types.Kind
		variant Variant
		outKind types.Kind
	}{
		{"pattern beats directive prefix", &Contribution{Name: "v-x", Pattern: np}, vue, types.KindAttributes, VariantPattern, types.KindAttributes},
		{"legacy directive", &Contribution{Name: "v-focus"}, vue, types.KindAttributes, VariantLegacyVueDirective, types.KindVueDirectives},
		{"directive prefix outside vue", &Contribution{Name: "v-focus"}, plain, types.KindAttributes, VariantStatic, types.KindAttributes},
		{"directive prefix on other kind", &Contribution{Name: "v-focus"}, vue, types.KindProps, VariantStatic, types.KindProps},
		{"legacy component", &Contribution{Name: "my-comp", Shape: ShapeHTMLElement}, vue, types.KindVueLegacyComponents, VariantLegacyVueComponent, types.KindVueComponents},
		{"legacy kind needs element shape", &Contribution{Name: "my-comp"}, vue, types.KindVueLegacyComponents, VariantStatic, types.KindVueLegacyComponents},
		{"static", &Contribution{Name: "div"}, plain, types.KindElements, VariantStatic, types.KindElements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Wrap(tt.c, tt.origin, root, types.NamespaceHTML, tt.kind)
			assert.Equal(t, tt.variant, w.Variant())
			assert.Equal(t, tt.outKind, w.Kind())
		})
	}
}

func TestWrapper_Names(t *testing.T) {
	vue := &Origin{framework: names.FrameworkVue}
	root := &testRoot{id: "r"}

	component := Wrap(&Contribution{Name: "my-component", Shape: ShapeHTMLElement}, vue, root, types.NamespaceHTML, types.KindVueLegacyComponents)
	assert.Equal(t, "MyComponent", component.Name())
	assert.Equal(t, "my-component", component.ContributionName())
	assert.Equal(t, "vue-components/MyComponent <legacy static>", component.String())

	single := Wrap(&Contribution{Name: "single", Shape: ShapeHTMLElement}, vue, root, types.NamespaceHTML, types.KindVueLegacyComponents)
	assert.Equal(t, "single", single.Name())

	directive := Wrap(&Contribution{Name: "v-focus"}, vue, root, types.NamespaceHTML, types.KindAttributes)
	assert.Equal(t, "focus", directive.Name())
	assert.Equal(t, "focus", directive.ContributionName())
	assert.Equal(t, "vue-directives/focus <static-legacy>", directive.String())

	unnamed := Wrap(&Contribution{}, vue, root, types.NamespaceHTML, types.KindElements)
	assert.Equal(t, "<no-name>", unnamed.Name())
	assert.Equal(t, "elements/<no-name> <static>", unnamed.String())
}

func TestWrapper_IsExclusiveFor(t *testing.T) {
	r := load(t, libraryManifest)
	base := r.wrapper(t, types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindElements}, 0)

	assert.True(t, base.IsExclusiveFor(types.NamespaceHTML, types.KindAttributes))
	assert.False(t, base.IsExclusiveFor(types.NamespaceHTML, types.KindSlots), "missing leading slash")
	assert.False(t, base.IsExclusiveFor(types.NamespaceCSS, types.KindProperties), "too many slashes")
	assert.False(t, base.IsExclusiveFor(types.NamespaceHTML, types.KindEvents))

	// inherited through extends, but only within the symbol's namespace
	child := r.one(t, types.NamespaceHTML, types.KindElements, "child")
	assert.True(t, child.IsExclusiveFor(types.NamespaceHTML, types.KindAttributes))
	assert.False(t, child.IsExclusiveFor(types.NamespaceJS, types.KindAttributes))
}

func TestParseExclusive(t *testing.T) {
	set := parseExclusive([]string{"/js/attributes", "js/attributes", "/js", "/js/a/b", "/xml/elements"})
	assert.Equal(t, map[types.QualifiedKind]struct{}{
		{Namespace: types.NamespaceJS, Kind: types.KindAttributes}: {},
	}, set)
}

func TestSymbol_Inheritance(t *testing.T) {
	r := load(t, libraryManifest)
	child := r.one(t, types.NamespaceHTML, types.KindElements, "child")

	assert.Equal(t, "<p><strong>Base</strong> element</p>", child.Description())
	assert.Equal(t, "https://example.com/base", child.DocURL())
	require.NotNil(t, child.Priority())
	assert.Equal(t, types.PriorityHigh, *child.Priority())
	assert.Equal(t, map[string]string{
		"Intro": "from base",
		"Usage": "from child",
		"Since": "2.0",
	}, child.DescriptionSections())

	// elements never declare required
	assert.Nil(t, child.Required())
}

func TestSymbol_EmptyLocalValuesWin(t *testing.T) {
	r := load(t, `{
  "name": "blank",
  "version": "1.0.0",
  "contributions": {
    "html": {
      "elements": [
        {"name": "base", "description": "from base", "doc-url": "https://example.com/base"},
        {"name": "blank", "extends": "/html/elements/base", "description": "", "doc-url": ""},
        {"name": "plain", "extends": "/html/elements/base"}
      ]
    }
  }
}`)

	blank := r.one(t, types.NamespaceHTML, types.KindElements, "blank")
	assert.Empty(t, blank.Description())
	assert.Empty(t, blank.DocURL())

	plain := r.one(t, types.NamespaceHTML, types.KindElements, "plain")
	assert.Equal(t, "from base", plain.Description())
	assert.Equal(t, "https://example.com/base", plain.DocURL())
}

func TestSymbol_IconInheritance(t *testing.T) {
	r := load(t, libraryManifest)

	assert.Equal(t, "data:x", r.one(t, types.NamespaceHTML, types.KindElements, "iconic").Icon())
	assert.Equal(t, "data:x", r.one(t, types.NamespaceHTML, types.KindElements, "inherits-icon").Icon())
	assert.Empty(t, r.one(t, types.NamespaceHTML, types.KindElements, "child").Icon())
}

func TestSymbol_ExtendsCycleIsCut(t *testing.T) {
	r := load(t, libraryManifest)

	a := r.one(t, types.NamespaceHTML, types.KindElements, "loop-a")
	assert.Equal(t, "<p>from b</p>", a.Description())
	assert.Empty(t, a.DocURL())

	b := r.one(t, types.NamespaceHTML, types.KindElements, "loop-b")
	assert.Empty(t, b.Icon())
}

func TestSymbol_AbstractNotMatched(t *testing.T) {
	r := load(t, libraryManifest)

	assert.Empty(t, r.NameMatch(types.NamespaceHTML, types.KindElements, "base", nil))
	assert.Len(t, r.ResolveReference(Path{{Namespace: types.NamespaceHTML, Kind: types.KindElements, Name: "base"}}, nil), 1)
}

func TestSymbol_AttributeValueMerge(t *testing.T) {
	r := load(t, libraryManifest)

	typed := r.one(t, types.NamespaceHTML, types.KindAttributes, "typed").AttributeValue()
	require.NotNil(t, typed)
	assert.Equal(t, "expression", typed.Kind)
	assert.Equal(t, "complex", typed.Type)
	assert.Equal(t, "string | number", typed.LangType)

	derived := r.one(t, types.NamespaceHTML, types.KindAttributes, "derived").AttributeValue()
	require.NotNil(t, derived)
	assert.Equal(t, "expression", derived.Kind)
	assert.Equal(t, "boolean", derived.Type)
	require.NotNil(t, derived.Default)
	assert.Equal(t, "false", *derived.Default)
	assert.Equal(t, "string | number", derived.LangType)
}

func TestSymbol_NameSegments(t *testing.T) {
	r := load(t, libraryManifest)

	child := r.one(t, types.NamespaceHTML, types.KindElements, "child")
	assert.Equal(t, []types.NameSegment{types.NewSegment(0, 5, child)}, child.NameSegments())

	pattern := r.wrapper(t, types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}, 2).WithRegistryContext(r)
	segs := pattern.NameSegments()
	require.Len(t, segs, 1)
	assert.Equal(t, 0, segs[0].Len())
}

func TestSymbol_NestedSymbols(t *testing.T) {
	r := load(t, libraryManifest)
	child := r.one(t, types.NamespaceHTML, types.KindElements, "child")

	attrs := child.NestedSymbols(r, types.NamespaceHTML, types.KindAttributes, "FOO", nil)
	require.Len(t, attrs, 1)
	foo := attrs[0]
	assert.Equal(t, "foo", foo.Name())
	require.NotNil(t, foo.Required())
	assert.True(t, *foo.Required())
	require.NotNil(t, foo.DefaultValue())
	assert.Equal(t, "1", *foo.DefaultValue())

	assert.Len(t, child.NestedSymbols(r, types.NamespaceJS, types.KindEvents, "change", nil), 1)
	assert.Empty(t, child.NestedSymbols(r, types.NamespaceHTML, types.KindAttributes, "bar", nil))
	assert.Equal(t, []types.QualifiedKind{
		{Namespace: types.NamespaceHTML, Kind: types.KindAttributes},
		{Namespace: types.NamespaceJS, Kind: types.KindEvents},
	}, child.NestedKinds())
}

func TestSymbol_PatternMatch(t *testing.T) {
	r := load(t, libraryManifest)

	syms := r.NameMatch(types.NamespaceHTML, types.KindAttributes, "v-on:click", nil)
	require.Len(t, syms, 1)
	m, ok := syms[0].(*types.Match)
	require.True(t, ok)
	assert.Empty(t, m.Problems())
	assert.Equal(t, "<p>Event listener</p>", m.Description())
	assert.True(t, m.Deprecated())

	segs := m.NameSegments()
	require.Len(t, segs, 3)
	assert.Equal(t, types.NewSegment(0, 5), segs[1])
	assert.Equal(t, 5, segs[2].Start)
	assert.Equal(t, 10, segs[2].End)
	require.Len(t, segs[2].Symbols, 1)
	assert.Equal(t, "click", segs[2].Symbols[0].Name())

	unknown := r.NameMatch(types.NamespaceHTML, types.KindAttributes, "v-on:nothing", nil)
	require.Len(t, unknown, 1)
	problems := unknown[0].(*types.Match).Problems()
	require.Len(t, problems, 1)
	assert.Equal(t, types.ProblemUnknownItem, problems[0].Problem)
	assert.Equal(t, []types.QualifiedKind{{Namespace: types.NamespaceJS, Kind: types.KindEvents}}, problems[0].SymbolKinds)

	assert.Empty(t, r.NameMatch(types.NamespaceHTML, types.KindAttributes, "x-on:click", nil))
}

func TestSymbol_PatternCompletion(t *testing.T) {
	r := load(t, libraryManifest)

	items := r.CodeCompletion(types.NamespaceHTML, types.KindAttributes, "v-on:", 5, nil)
	var names []string
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Contains(t, names, "click")
	assert.Contains(t, names, "typed")
	for _, item := range items {
		if item.Name == "click" {
			assert.Equal(t, 5, item.Offset)
			require.NotNil(t, item.Priority)
			assert.Equal(t, types.PriorityLow, *item.Priority)
		}
	}
}

func TestSymbol_String(t *testing.T) {
	r := load(t, libraryManifest)
	pattern := r.wrapper(t, types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}, 2)

	assert.Equal(t, "attributes/[v-on:]... <pattern>", pattern.String())
	assert.Equal(t, "elements/child <static>", r.one(t, types.NamespaceHTML, types.KindElements, "child").String())
}

func TestLegacyVueComponent(t *testing.T) {
	doc := `{
      "name": "legacy", "framework": "vue",
      "contributions": {"html": {
        "tags": [{
          "name": "my-comp",
          "attributes": [{"name": "size", "default": "1", "required": true}],
          "vue-scoped-slots": [{"name": "item"}],
          "events": [{"name": "close"}]
        }],
        "attributes": [{"name": "v-focus", "description": "Focus directive"}]
      }}
    }`
	r := load(t, doc)

	comp := r.one(t, types.NamespaceHTML, types.KindVueComponents, "MyComp")
	assert.Equal(t, "my-comp", comp.Name())
	assert.Equal(t, "MyComp", comp.MatchedName())

	props := comp.NestedSymbols(r, types.NamespaceHTML, types.KindProps, "size", nil)
	require.Len(t, props, 1)
	av := props[0].AttributeValue()
	require.NotNil(t, av)
	require.NotNil(t, av.Default)
	assert.Equal(t, "1", *av.Default)

	assert.Len(t, comp.NestedSymbols(r, types.NamespaceHTML, types.KindSlots, "item", nil), 1)
	assert.Len(t, comp.NestedSymbols(r, types.NamespaceJS, types.KindEvents, "close", nil), 1)
	assert.Empty(t, comp.NestedSymbols(r, types.NamespaceHTML, types.KindAttributes, "size", nil))

	directive := r.one(t, types.NamespaceHTML, types.KindVueDirectives, "focus")
	assert.Equal(t, "focus", directive.Name())
	assert.Equal(t, "Focus directive", directive.Description())
}

func TestSymbol_CreatePointer(t *testing.T) {
	r := load(t, libraryManifest)
	child := r.one(t, types.NamespaceHTML, types.KindElements, "child")

	ptr := child.CreatePointer()
	sym, ok := ptr.Dereference()
	require.True(t, ok)
	assert.Equal(t, "child", sym.Name())
	assert.Equal(t, "https://example.com/base", sym.DocURL())

	r.root.gone = true
	_, ok = ptr.Dereference()
	assert.False(t, ok)

	r.root.gone = false
	r.gone = true
	_, ok = ptr.Dereference()
	assert.False(t, ok)
}

func TestOrigin_RenderDescription(t *testing.T) {
	assert.Equal(t, "<b>x</b>", (&Origin{markup: MarkupHTML}).RenderDescription("<b>x</b>"))
	assert.Equal(t, "a &lt; b<br>c", (&Origin{markup: MarkupNone}).RenderDescription("a < b\nc"))
	assert.Equal(t, "<p><em>x</em></p>", (&Origin{markup: MarkupMarkdown}).RenderDescription("*x*"))
}

func TestPlainTypes(t *testing.T) {
	pt := PlainTypes{}
	assert.Equal(t, "string", pt.ResolveType("string"))
	assert.Equal(t, "string | number", pt.ResolveType([]any{"string", "number"}))
	assert.Equal(t, `import("vue").Ref`, pt.ResolveType(map[string]any{"name": "Ref", "module": "vue"}))
	assert.Nil(t, pt.ResolveType(42))
}

func TestParsePath(t *testing.T) {
	path, err := ParsePath("/html/elements/div/attributes/foo", "")
	require.NoError(t, err)
	assert.Equal(t, Path{
		{Namespace: types.NamespaceHTML, Kind: types.KindElements, Name: "div"},
		{Namespace: types.NamespaceHTML, Kind: types.KindAttributes, Name: "foo"},
	}, path)
	assert.False(t, path.IsKindRef())
	assert.Equal(t, "/html/elements/div/attributes/foo", path.String())

	kindRef, err := ParsePath("/html/elements/div/js/events", "")
	require.NoError(t, err)
	assert.True(t, kindRef.IsKindRef())
	assert.Equal(t, types.NamespaceJS, kindRef.Last().Namespace)
	assert.Equal(t, "/html/elements/div/js/events", kindRef.String())

	relative, err := ParsePath("attributes", types.NamespaceHTML)
	require.NoError(t, err)
	assert.Equal(t, Path{{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}}, relative)

	for _, bad := range []string{"", "/", "/xml/elements", "/html", "attributes/x"} {
		_, err := ParsePath(bad, "")
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := (&NamePattern{Regex: "(", Required: true}).Compile(types.NamespaceHTML)
	assert.Error(t, err)

	p, err := (&NamePattern{Static: "x", Required: false}).Compile(types.NamespaceHTML)
	require.NoError(t, err)
	assert.False(t, p.IsStaticAndRequired())
}
