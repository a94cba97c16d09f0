package webtypes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

var (
	ErrMalformed    = errors.New("malformed web-types document")
	ErrInvalidPath  = errors.New("invalid symbol reference path")
	ErrEmptyPattern = errors.New("name pattern has nothing to match")
)

// Shape records which descriptor family a contribution was declared as.
// Some attributes only exist for some shapes.
type Shape int

const (
	ShapeGeneric Shape = iota
	ShapeHTMLElement
	ShapeHTMLAttribute
)

func (s Shape) String() string {
	switch s {
	case ShapeHTMLElement:
		return "html-element"
	case ShapeHTMLAttribute:
		return "html-attribute"
	default:
		return "generic"
	}
}

// Markup is the format descriptions are written in
type Markup string

const (
	MarkupHTML     Markup = "html"
	MarkupMarkdown Markup = "markdown"
	MarkupNone     Markup = "none"
)

// Manifest is a decoded web-types document
type Manifest struct {
	Name              string
	Version           string
	Framework         string
	DescriptionMarkup Markup
	NameConversion    names.ConventionTables
	Contributions     map[types.QualifiedKind][]*Contribution
}

// Kinds returns the kinds the manifest contributes to in a stable order
func (m *Manifest) Kinds() []types.QualifiedKind {
	return sortedKinds(m.Contributions)
}

// Count returns the number of top-level contributions
func (m *Manifest) Count() int {
	n := 0
	for _, cs := range m.Contributions {
		n += len(cs)
	}
	return n
}

// Section is one entry of an ordered description-sections table
type Section struct {
	Key   string
	Value string
}

// AttributeValue is the declared value of an attribute-like contribution
type AttributeValue struct {
	Kind     string
	Type     any
	Required *bool
	Default  *string
}

// Reference points at other symbols, e.g. from "extends" or pattern items
type Reference struct {
	Path            string
	IncludeVirtual  bool
	IncludeAbstract bool
}

// Contribution is an immutable symbol descriptor taken from a manifest
type Contribution struct {
	Shape Shape

	Name    string
	Pattern *NamePattern
	Extends *Reference

	Description         *string
	DescriptionSections []Section
	DocURL              *string
	Icon                *string
	Source              *types.Location
	Type                any
	Priority            *types.Priority
	Proximity           *int

	Deprecated   bool
	Experimental bool
	Virtual      bool
	Abstract     bool
	Extension    bool

	ExclusiveContributions []string

	// Required and Default are honoured for generic and html attribute shapes only
	Required       *bool
	Default        *string
	AttributeValue *AttributeValue

	Contributions map[types.QualifiedKind][]*Contribution
	Properties    map[string]any
}

// Nested returns the nested contributions of qk
func (c *Contribution) Nested(qk types.QualifiedKind) []*Contribution {
	return c.Contributions[qk]
}

func (c *Contribution) clone() *Contribution {
	cp := *c
	cp.Contributions = make(map[types.QualifiedKind][]*Contribution, len(c.Contributions))
	for qk, cs := range c.Contributions {
		cp.Contributions[qk] = cs
	}
	cp.Properties = make(map[string]any, len(c.Properties))
	for k, v := range c.Properties {
		cp.Properties[k] = v
	}
	return &cp
}

// NamePattern is the declarative form of a dynamic name pattern.
// Exactly one of Regex, Static, Item, Template, Or or Items describes it.
type NamePattern struct {
	Regex         string
	CaseSensitive bool

	Static      string
	Item        bool
	DisplayName string

	Template []*NamePattern
	Or       []*NamePattern
	Items    []Reference

	// Required is false when the pattern may be skipped
	Required bool
}

// PathSegment is one namespace/kind/name step of a reference path.
// Name is empty in the last segment of a path that refers to a whole kind.
type PathSegment struct {
	Namespace types.Namespace
	Kind      types.Kind
	Name      string
}

// Path is a parsed reference path: /namespace/kind/name[/kind/name...]
type Path []PathSegment

// ParsePath parses a reference path. Relative paths resolve against namespace
// and a namespace segment may switch the namespace for the segments after it.
func ParsePath(s string, namespace types.Namespace) (Path, error) {
	trimmed := strings.Trim(s, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
	}
	tokens := strings.Split(trimmed, "/")

	var path Path
	ns := namespace
	for i := 0; i < len(tokens); {
		if parsed, ok := types.ParseNamespace(tokens[i]); ok {
			ns = parsed
			i++
			if i == len(tokens) {
				return nil, fmt.Errorf("%w: %q has no kind", ErrInvalidPath, s)
			}
		} else if i == 0 && strings.HasPrefix(s, "/") {
			return nil, fmt.Errorf("%w: %q starts with unknown namespace", ErrInvalidPath, s)
		}
		if ns == "" || tokens[i] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
		seg := PathSegment{Namespace: ns, Kind: types.Kind(tokens[i])}
		if i+1 < len(tokens) {
			seg.Name = tokens[i+1]
		}
		path = append(path, seg)
		i += 2
	}
	return path, nil
}

// IsKindRef reports whether the path names a whole kind rather than a symbol
func (p Path) IsKindRef() bool {
	return len(p) > 0 && p[len(p)-1].Name == ""
}

// Last returns the final segment
func (p Path) Last() PathSegment {
	return p[len(p)-1]
}

// Owner returns the path without its final segment
func (p Path) Owner() Path {
	return p[:len(p)-1]
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i == 0 || seg.Namespace != p[i-1].Namespace {
			b.WriteString("/" + string(seg.Namespace))
		}
		b.WriteString("/" + string(seg.Kind))
		if seg.Name != "" {
			b.WriteString("/" + seg.Name)
		}
	}
	return b.String()
}
