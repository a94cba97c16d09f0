package webtypes

import (
	"strings"
	"unicode"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

const (
	legacyDirectivePrefix = "v-"
	legacyScopedSlots     = types.Kind("vue-scoped-slots")
	vueProperties         = "vue-properties"
)

// toVueComponentPascalName converts kebab-case to PascalCase: my-component -> MyComponent
func toVueComponentPascalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	capitalizeNext := true
	for _, r := range name {
		switch {
		case r == '-':
			capitalizeNext = true
		case capitalizeNext:
			b.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// convertToComponentContribution rewrites a legacy html element into the shape
// of a Vue component: attributes become props and scoped slots become slots.
func convertToComponentContribution(el *Contribution) *Contribution {
	out := el.clone()
	out.Shape = ShapeGeneric

	attrs := types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindAttributes}
	props := types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindProps}
	slots := types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindSlots}

	for qk, cs := range el.Contributions {
		if qk.Kind != legacyScopedSlots || len(cs) == 0 {
			continue
		}
		delete(out.Contributions, qk)
		target := types.QualifiedKind{Namespace: qk.Namespace, Kind: types.KindSlots}
		if qk.Namespace == types.NamespaceHTML {
			target = slots
		}
		for _, c := range cs {
			out.Contributions[target] = append(out.Contributions[target], convertToSlot(c))
		}
	}

	delete(out.Contributions, attrs)
	converted := make([]*Contribution, 0, len(el.Contributions[attrs]))
	for _, a := range el.Contributions[attrs] {
		converted = append(converted, convertToProp(a))
	}
	out.Contributions[props] = converted
	return out
}

func convertToProp(attr *Contribution) *Contribution {
	out := attr.clone()
	out.Shape = ShapeGeneric
	out.AttributeValue = nil
	if attr.AttributeValue != nil || attr.Default != nil {
		av := &AttributeValue{}
		if v := attr.AttributeValue; v != nil {
			av.Required = v.Required
			av.Default = v.Default
			av.Type = v.Type
		}
		if av.Default == nil {
			av.Default = attr.Default
		}
		out.AttributeValue = av
	}
	return out
}

func convertToSlot(c *Contribution) *Contribution {
	out := c.clone()
	out.Shape = ShapeGeneric
	if v, ok := c.Properties["properties"]; ok {
		out.Properties[vueProperties] = v
	}
	for qk, cs := range c.Contributions {
		if qk.Kind == types.KindProperties {
			out.Contributions[types.QualifiedKind{Namespace: qk.Namespace, Kind: vueProperties}] = cs
		}
	}
	return out
}
