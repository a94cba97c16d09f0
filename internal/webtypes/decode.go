package webtypes

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

const (
	legacyTagsKind       = "tags"
	itemPlaceholder      = "#item"
	itemPlaceholderNamed = "#item:"
)

// Decode parses a web-types document. JSON documents are accepted as YAML.
func Decode(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nodeError(root, "top level must be an object")
	}

	m := &Manifest{
		DescriptionMarkup: MarkupNone,
		Contributions:     make(map[types.QualifiedKind][]*Contribution),
	}
	var contributions *yaml.Node
	err := eachField(root, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "name":
			m.Name, err = scalar(val)
		case "version":
			m.Version, err = scalar(val)
		case "framework":
			m.Framework, err = scalar(val)
		case "description-markup":
			m.DescriptionMarkup, err = decodeMarkup(val)
		case "name-conversion":
			m.NameConversion, err = decodeNameConversion(val)
		case "contributions":
			contributions = val
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	// contributions depend on the framework, which may come later in the document
	if contributions != nil {
		if err := decodeContributions(m, contributions); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func decodeContributions(m *Manifest, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, "contributions must be an object")
	}
	return eachField(node, func(nsKey string, nsNode *yaml.Node) error {
		ns, ok := types.ParseNamespace(nsKey)
		if !ok {
			return nodeError(nsNode, fmt.Sprintf("unknown namespace %q", nsKey))
		}
		if nsNode.Kind != yaml.MappingNode {
			return nodeError(nsNode, "namespace contributions must be an object")
		}
		return eachField(nsNode, func(kindKey string, val *yaml.Node) error {
			if val.Kind != yaml.SequenceNode {
				// settings such as description-markup may live next to the kinds
				if kindKey == "description-markup" {
					markup, err := decodeMarkup(val)
					if err != nil {
						return err
					}
					m.DescriptionMarkup = markup
				}
				return nil
			}
			kind, shape := topLevelKind(ns, types.Kind(kindKey), m.Framework)
			cs, err := decodeContributionList(val, ns, shape)
			if err != nil {
				return err
			}
			qk := types.QualifiedKind{Namespace: ns, Kind: kind}
			m.Contributions[qk] = append(m.Contributions[qk], cs...)
			return nil
		})
	})
}

// topLevelKind maps a declared kind to the kind contributions are stored under
func topLevelKind(ns types.Namespace, kind types.Kind, framework string) (types.Kind, Shape) {
	if ns != types.NamespaceHTML {
		return kind, ShapeGeneric
	}
	switch kind {
	case legacyTagsKind:
		if framework == names.FrameworkVue {
			return types.KindVueLegacyComponents, ShapeHTMLElement
		}
		return types.KindElements, ShapeHTMLElement
	case types.KindElements:
		return kind, ShapeHTMLElement
	case types.KindAttributes:
		return kind, ShapeHTMLAttribute
	default:
		return kind, ShapeGeneric
	}
}

func decodeContributionList(node *yaml.Node, ns types.Namespace, shape Shape) ([]*Contribution, error) {
	out := make([]*Contribution, 0, len(node.Content))
	for _, item := range node.Content {
		c, err := decodeContribution(item, ns, shape)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeContribution(node *yaml.Node, ns types.Namespace, shape Shape) (*Contribution, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "contribution must be an object")
	}
	c := &Contribution{
		Shape:         shape,
		Contributions: make(map[types.QualifiedKind][]*Contribution),
		Properties:    make(map[string]any),
	}
	err := eachField(node, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "name":
			c.Name, err = scalar(val)
		case "pattern":
			c.Pattern, err = decodePattern(val, true)
		case "extends":
			c.Extends, err = decodeReference(val)
		case "description":
			c.Description, err = optionalString(val)
		case "description-sections":
			c.DescriptionSections, err = decodeSections(val)
		case "doc-url":
			c.DocURL, err = optionalString(val)
		case "icon":
			c.Icon, err = optionalString(val)
		case "source":
			c.Source, err = decodeSource(val)
		case "type":
			c.Type, err = decodeAny(val)
		case "priority":
			c.Priority, err = decodePriority(val)
		case "proximity":
			var p int
			if err = val.Decode(&p); err == nil {
				c.Proximity = &p
			}
		case "deprecated", "obsolete":
			var flag bool
			flag, err = flagOrMessage(val)
			c.Deprecated = c.Deprecated || flag
		case "experimental":
			c.Experimental, err = flagOrMessage(val)
		case "virtual":
			err = val.Decode(&c.Virtual)
		case "abstract":
			err = val.Decode(&c.Abstract)
		case "extension":
			err = val.Decode(&c.Extension)
		case "exclusive-contributions":
			err = val.Decode(&c.ExclusiveContributions)
		case "required":
			var r bool
			if err = val.Decode(&r); err == nil {
				c.Required = &r
			}
		case "default":
			c.Default, err = optionalString(val)
		case "attribute-value", "value":
			c.AttributeValue, err = decodeAttributeValue(val)
		case "html", "css", "js":
			err = decodeNested(c, types.Namespace(key), val)
		default:
			if isContributionList(val) {
				nestedNS, nestedShape := nestedKind(ns, shape, key)
				var cs []*Contribution
				cs, err = decodeContributionList(val, nestedNS, nestedShape)
				qk := types.QualifiedKind{Namespace: nestedNS, Kind: types.Kind(key)}
				c.Contributions[qk] = append(c.Contributions[qk], cs...)
			} else {
				c.Properties[key], err = decodeAny(val)
			}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// nestedKind decides the namespace and shape of a nested contribution list
func nestedKind(ns types.Namespace, parent Shape, key string) (types.Namespace, Shape) {
	if parent == ShapeHTMLElement {
		switch types.Kind(key) {
		case types.KindAttributes:
			return types.NamespaceHTML, ShapeHTMLAttribute
		case types.KindEvents:
			return types.NamespaceJS, ShapeGeneric
		}
	}
	return ns, ShapeGeneric
}

func decodeNested(c *Contribution, ns types.Namespace, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, fmt.Sprintf("%s contributions must be an object", ns))
	}
	return eachField(node, func(kind string, val *yaml.Node) error {
		if val.Kind != yaml.SequenceNode {
			return nodeError(val, fmt.Sprintf("%s/%s must be a list", ns, kind))
		}
		cs, err := decodeContributionList(val, ns, ShapeGeneric)
		if err != nil {
			return err
		}
		qk := types.QualifiedKind{Namespace: ns, Kind: types.Kind(kind)}
		c.Contributions[qk] = append(c.Contributions[qk], cs...)
		return nil
	})
}

func isContributionList(node *yaml.Node) bool {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return false
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return false
		}
	}
	return true
}

// decodePattern decodes a name pattern. A bare string is a regular expression
// at the root and literal text (or an item placeholder) inside a template.
func decodePattern(node *yaml.Node, root bool) (*NamePattern, error) {
	np := &NamePattern{Required: true}
	switch node.Kind {
	case yaml.ScalarNode:
		switch {
		case root:
			np.Regex = node.Value
		case node.Value == itemPlaceholder:
			np.Item = true
		case strings.HasPrefix(node.Value, itemPlaceholderNamed):
			np.Item = true
			np.DisplayName = strings.TrimPrefix(node.Value, itemPlaceholderNamed)
		default:
			np.Static = node.Value
		}
		return np, nil
	case yaml.SequenceNode:
		// a list is shorthand for a template
		elements, err := decodePatternList(node)
		if err != nil {
			return nil, err
		}
		np.Template = elements
		return np, nil
	case yaml.MappingNode:
	default:
		return nil, nodeError(node, "pattern must be a string, list or object")
	}

	err := eachField(node, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "regex":
			np.Regex, err = scalar(val)
		case "case-sensitive":
			err = val.Decode(&np.CaseSensitive)
		case "template":
			np.Template, err = decodePatternList(val)
		case "or":
			np.Or, err = decodePatternList(val)
		case "items":
			np.Items, err = decodeReferences(val)
		case "required":
			err = val.Decode(&np.Required)
		case "display-name":
			np.DisplayName, err = scalar(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if np.Regex == "" && np.Template == nil && np.Or == nil && np.Items == nil {
		return nil, nodeError(node, ErrEmptyPattern.Error())
	}
	return np, nil
}

func decodePatternList(node *yaml.Node) ([]*NamePattern, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, nodeError(node, "pattern list expected")
	}
	out := make([]*NamePattern, 0, len(node.Content))
	for _, el := range node.Content {
		np, err := decodePattern(el, false)
		if err != nil {
			return nil, err
		}
		out = append(out, np)
	}
	return out, nil
}

func decodeReferences(node *yaml.Node) ([]Reference, error) {
	if node.Kind != yaml.SequenceNode {
		ref, err := decodeReference(node)
		if err != nil {
			return nil, err
		}
		return []Reference{*ref}, nil
	}
	out := make([]Reference, 0, len(node.Content))
	for _, el := range node.Content {
		ref, err := decodeReference(el)
		if err != nil {
			return nil, err
		}
		out = append(out, *ref)
	}
	return out, nil
}

func decodeReference(node *yaml.Node) (*Reference, error) {
	ref := &Reference{IncludeVirtual: true}
	switch node.Kind {
	case yaml.ScalarNode:
		ref.Path = node.Value
	case yaml.MappingNode:
		err := eachField(node, func(key string, val *yaml.Node) error {
			switch key {
			case "path":
				var err error
				ref.Path, err = scalar(val)
				return err
			case "includeVirtual", "include-virtual":
				return val.Decode(&ref.IncludeVirtual)
			case "includeAbstract", "include-abstract":
				return val.Decode(&ref.IncludeAbstract)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, nodeError(node, "reference must be a path or an object")
	}
	if ref.Path == "" {
		return nil, nodeError(node, "reference has no path")
	}
	return ref, nil
}

func decodeSections(node *yaml.Node) ([]Section, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "description-sections must be an object")
	}
	var out []Section
	err := eachField(node, func(key string, val *yaml.Node) error {
		v, err := scalar(val)
		if err != nil {
			return err
		}
		out = append(out, Section{Key: key, Value: v})
		return nil
	})
	return out, err
}

func decodeSource(node *yaml.Node) (*types.Location, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "source must be an object")
	}
	var loc types.Location
	err := eachField(node, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "file":
			loc.File, err = scalar(val)
		case "offset":
			err = val.Decode(&loc.Offset)
		case "module":
			loc.Module, err = scalar(val)
		case "symbol":
			loc.Symbol, err = scalar(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func decodeAttributeValue(node *yaml.Node) (*AttributeValue, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "attribute-value must be an object")
	}
	av := &AttributeValue{}
	err := eachField(node, func(key string, val *yaml.Node) error {
		var err error
		switch key {
		case "kind":
			av.Kind, err = scalar(val)
		case "type":
			av.Type, err = decodeAny(val)
		case "required":
			var r bool
			if err = val.Decode(&r); err == nil {
				av.Required = &r
			}
		case "default":
			av.Default, err = optionalString(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return av, nil
}

func decodePriority(node *yaml.Node) (*types.Priority, error) {
	s, err := scalar(node)
	if err != nil {
		return nil, err
	}
	p, err := types.ParsePriority(s)
	if err != nil {
		return nil, nodeError(node, err.Error())
	}
	return &p, nil
}

func decodeMarkup(node *yaml.Node) (Markup, error) {
	s, err := scalar(node)
	if err != nil {
		return "", err
	}
	switch Markup(strings.ToLower(s)) {
	case MarkupHTML, MarkupMarkdown, MarkupNone:
		return Markup(strings.ToLower(s)), nil
	default:
		return "", nodeError(node, fmt.Sprintf("unknown description-markup %q", s))
	}
}

func decodeNameConversion(node *yaml.Node) (names.ConventionTables, error) {
	var tables names.ConventionTables
	if node.Kind != yaml.MappingNode {
		return tables, nodeError(node, "name-conversion must be an object")
	}
	err := eachField(node, func(key string, val *yaml.Node) error {
		table, err := decodeConventionTable(val)
		if err != nil {
			return err
		}
		switch key {
		case "canonical-names":
			tables.Canonical = table
		case "match-names":
			tables.Match = table
		case "name-variants":
			tables.Variants = table
		}
		return nil
	})
	return tables, err
}

func decodeConventionTable(node *yaml.Node) (map[types.QualifiedKind][]names.Convention, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "convention table must be an object")
	}
	out := make(map[types.QualifiedKind][]names.Convention)
	err := eachField(node, func(key string, val *yaml.Node) error {
		ns, kind, ok := strings.Cut(strings.TrimPrefix(key, "/"), "/")
		qk := types.QualifiedKind{Namespace: types.Namespace(ns), Kind: types.Kind(kind)}
		if !ok || qk.Validate() != nil {
			return nodeError(val, fmt.Sprintf("invalid kind %q in name-conversion", key))
		}
		var raw []string
		if val.Kind == yaml.SequenceNode {
			if err := val.Decode(&raw); err != nil {
				return nodeError(val, err.Error())
			}
		} else {
			s, err := scalar(val)
			if err != nil {
				return err
			}
			raw = []string{s}
		}
		for _, r := range raw {
			c, ok := names.ParseConvention(r)
			if !ok {
				return nodeError(val, fmt.Sprintf("unknown naming convention %q", r))
			}
			out[qk] = append(out[qk], c)
		}
		return nil
	})
	return out, err
}

func eachField(node *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func scalar(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", nodeError(node, "string expected")
	}
	return node.Value, nil
}

func optionalString(node *yaml.Node) (*string, error) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	s, err := scalar(node)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// flagOrMessage accepts either a boolean or a message, where a message means true
func flagOrMessage(node *yaml.Node) (bool, error) {
	if node.Tag == "!!bool" {
		var b bool
		err := node.Decode(&b)
		return b, err
	}
	s, err := scalar(node)
	return s != "", err
}

func decodeAny(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, nodeError(node, err.Error())
	}
	return v, nil
}

func nodeError(node *yaml.Node, msg string) error {
	return fmt.Errorf("%w: %w", ErrMalformed, &types.ParseError{
		Line:    node.Line,
		Column:  node.Column,
		Message: fmt.Sprintf("line %d: %s", node.Line, msg),
	})
}

func sortedKinds[V any](m map[types.QualifiedKind]V) []types.QualifiedKind {
	out := make([]types.QualifiedKind, 0, len(m))
	for qk := range m {
		out = append(out, qk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
