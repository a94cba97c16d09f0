package names

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

func TestConventionApply(t *testing.T) {
	tests := []struct {
		convention Convention
		in         string
		want       string
	}{
		{ConventionAsIs, "myComponent", "myComponent"},
		{ConventionLowercase, "MyComponent", "mycomponent"},
		{ConventionUppercase, "my-component", "MY-COMPONENT"},
		{ConventionPascalCase, "my-component", "MyComponent"},
		{ConventionPascalCase, "myHTMLElement", "MyHtmlElement"},
		{ConventionCamelCase, "my_component", "myComponent"},
		{ConventionKebabCase, "MyComponent", "my-component"},
		{ConventionKebabCase, "HTMLElement", "html-element"},
		{ConventionKebabCase, "v2Item", "v2-item"},
		{ConventionSnakeCase, "my-component", "my_component"},
		{ConventionKebabCase, "", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.convention)+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.convention.Apply(tt.in))
		})
	}
}

func TestParseConvention(t *testing.T) {
	c, ok := ParseConvention("kebab-case")
	assert.True(t, ok)
	assert.Equal(t, ConventionKebabCase, c)

	_, ok = ParseConvention("Title Case")
	assert.False(t, ok)
}

func TestConventions_Dedupes(t *testing.T) {
	fn := Conventions(ConventionKebabCase, ConventionLowercase, ConventionAsIs)
	assert.Equal(t, []string{"foo", "Foo"}, fn("Foo"))
}

func TestFromConventions(t *testing.T) {
	qk := types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindProps}
	rules := FromConventions("vue", ConventionTables{
		Canonical: map[types.QualifiedKind][]Convention{qk: {ConventionKebabCase}},
		Variants:  map[types.QualifiedKind][]Convention{qk: {ConventionKebabCase, ConventionCamelCase}},
		Match:     map[types.QualifiedKind][]Convention{qk: nil},
	})

	key := RuleKey{Framework: "vue", Namespace: types.NamespaceHTML, Kind: types.KindProps}
	assert.Contains(t, rules.CanonicalNames(), key)
	assert.Contains(t, rules.NameVariants(), key)
	assert.Empty(t, rules.MatchNames())
	assert.Equal(t, []string{"foo-bar", "fooBar"}, rules.NameVariants()[key]("fooBar"))
}
