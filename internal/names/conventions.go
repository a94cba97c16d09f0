package names

import (
	"strings"
	"unicode"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Convention is a naming convention a manifest may declare for a kind
type Convention string

const (
	ConventionAsIs       Convention = "as-is"
	ConventionLowercase  Convention = "lowercase"
	ConventionUppercase  Convention = "uppercase"
	ConventionPascalCase Convention = "PascalCase"
	ConventionCamelCase  Convention = "camelCase"
	ConventionKebabCase  Convention = "kebab-case"
	ConventionSnakeCase  Convention = "snake_case"
)

// ParseConvention returns the convention named s, reporting false for unknown names
func ParseConvention(s string) (Convention, bool) {
	switch c := Convention(s); c {
	case ConventionAsIs, ConventionLowercase, ConventionUppercase, ConventionPascalCase,
		ConventionCamelCase, ConventionKebabCase, ConventionSnakeCase:
		return c, true
	default:
		return "", false
	}
}

// Apply converts name to the convention
func (c Convention) Apply(name string) string {
	switch c {
	case ConventionLowercase:
		return strings.ToLower(name)
	case ConventionUppercase:
		return strings.ToUpper(name)
	case ConventionPascalCase:
		return joinWords(splitWords(name), "", true, true)
	case ConventionCamelCase:
		return joinWords(splitWords(name), "", false, true)
	case ConventionKebabCase:
		return joinWords(splitWords(name), "-", false, false)
	case ConventionSnakeCase:
		return joinWords(splitWords(name), "_", false, false)
	default:
		return name
	}
}

// Conventions returns a NameFunc that applies each convention in order,
// dropping duplicate results.
func Conventions(conventions ...Convention) NameFunc {
	cs := append([]Convention(nil), conventions...)
	return func(name string) []string {
		out := make([]string, 0, len(cs))
		seen := make(map[string]bool, len(cs))
		for _, c := range cs {
			v := c.Apply(name)
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
		return out
	}
}

// ConventionTables holds convention declarations per qualified kind for the
// three rule tables.
type ConventionTables struct {
	Canonical map[types.QualifiedKind][]Convention
	Match     map[types.QualifiedKind][]Convention
	Variants  map[types.QualifiedKind][]Convention
}

// FromConventions builds an immutable rules layer for framework from declared conventions
func FromConventions(framework string, tables ConventionTables) *StaticRules {
	build := func(src map[types.QualifiedKind][]Convention) map[RuleKey]NameFunc {
		out := make(map[RuleKey]NameFunc, len(src))
		for qk, cs := range src {
			if len(cs) == 0 {
				continue
			}
			out[RuleKey{Framework: framework, Namespace: qk.Namespace, Kind: qk.Kind}] = Conventions(cs...)
		}
		return out
	}
	return NewStaticRules(build(tables.Canonical), build(tables.Match), build(tables.Variants))
}

// splitWords breaks a name at separators and case changes:
// "myHTMLElement" -> [my HTML Element], "x-foo_bar" -> [x foo bar]
func splitWords(name string) []string {
	var words []string
	runes := []rune(name)
	start := 0
	flush := func(end int) {
		if end > start {
			words = append(words, string(runes[start:end]))
		}
	}
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || unicode.IsSpace(r):
			flush(i)
			start = i + 1
		case i > start && unicode.IsUpper(r):
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush(i)
				start = i
			}
		}
	}
	flush(len(runes))
	return words
}

func joinWords(words []string, sep string, capitalizeFirst, capitalizeRest bool) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteString(sep)
		}
		w = strings.ToLower(w)
		if (i == 0 && capitalizeFirst) || (i > 0 && capitalizeRest) {
			w = capitalize(w)
		}
		b.WriteString(w)
	}
	return b.String()
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
