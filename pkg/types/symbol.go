package types

import (
	"fmt"
	"strings"
)

// Namespace partitions the symbol space by language (markup, styles, script)
type Namespace string

const (
	NamespaceHTML Namespace = "html"
	NamespaceCSS  Namespace = "css"
	NamespaceJS   Namespace = "js"
)

// ParseNamespace returns the namespace for s, reporting false for unknown values
func ParseNamespace(s string) (Namespace, bool) {
	switch Namespace(s) {
	case NamespaceHTML, NamespaceCSS, NamespaceJS:
		return Namespace(s), true
	default:
		return "", false
	}
}

// Kind classifies symbols within a namespace
type Kind string

const (
	KindElements    Kind = "elements"
	KindAttributes  Kind = "attributes"
	KindProperties  Kind = "properties"
	KindEvents      Kind = "events"
	KindSlots       Kind = "slots"
	KindProps       Kind = "props"
	KindPseudoClass Kind = "pseudo-classes"

	KindVueDirectives       Kind = "vue-directives"
	KindVueComponents       Kind = "vue-components"
	KindVueLegacyComponents Kind = "$vue-legacy-components$"
)

// QualifiedKind is a (namespace, kind) pair
type QualifiedKind struct {
	Namespace Namespace `json:"namespace"`
	Kind      Kind      `json:"kind"`
}

// String renders the kind as a path: /namespace/kind
func (qk QualifiedKind) String() string {
	return "/" + string(qk.Namespace) + "/" + string(qk.Kind)
}

// Validate checks that both coordinates are present and the namespace is known
func (qk QualifiedKind) Validate() error {
	if qk.Namespace == "" {
		return ErrEmptyNamespace
	}
	if qk.Kind == "" {
		return ErrEmptyKind
	}
	if _, ok := ParseNamespace(string(qk.Namespace)); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidNamespace, qk.Namespace)
	}
	return nil
}

// Priority orders competing symbols in matching and completion
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
)

var priorityNames = map[Priority]string{
	PriorityLowest:  "lowest",
	PriorityLow:     "low",
	PriorityNormal:  "normal",
	PriorityHigh:    "high",
	PriorityHighest: "highest",
}

// ParsePriority converts a manifest priority name into a Priority
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return PriorityNormal, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// NameTarget selects which textual form of a name the names provider produces
type NameTarget int

const (
	// TargetQuery produces the forms a user-typed name is looked up by
	TargetQuery NameTarget = iota
	// TargetStorageKey produces the canonical keys a symbol is stored under
	TargetStorageKey
	// TargetCompletionVariants produces the forms offered in code completion
	TargetCompletionVariants
)

var targetNames = map[NameTarget]string{
	TargetQuery:              "query",
	TargetStorageKey:         "storage",
	TargetCompletionVariants: "completion",
}

// ParseNameTarget converts a target name ("query", "storage", "completion")
func ParseNameTarget(s string) (NameTarget, error) {
	for t, name := range targetNames {
		if name == strings.ToLower(s) {
			return t, nil
		}
	}
	return TargetQuery, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
}

func (t NameTarget) String() string {
	return targetNames[t]
}

// Location points at the declaration site of a symbol
type Location struct {
	File   string `json:"file,omitempty"`
	Module string `json:"module,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// AttributeValue describes the value an attribute-like symbol accepts
type AttributeValue struct {
	Kind     string
	Type     string
	Required *bool
	Default  *string
	LangType any
}

// Symbol is the queryable view of a contributed or matched symbol.
// Absent attributes are reported as zero values.
type Symbol interface {
	Namespace() Namespace
	Kind() Kind
	Name() string
	MatchedName() string
	Origin() Origin
	NameSegments() []NameSegment

	Description() string
	DescriptionSections() map[string]string
	DocURL() string
	Icon() string
	Type() any
	Location() *Location
	Source() any
	AttributeValue() *AttributeValue
	Priority() *Priority
	Proximity() *int
	Required() *bool
	DefaultValue() *string
	Properties() map[string]any

	Deprecated() bool
	Experimental() bool
	Virtual() bool
	Abstract() bool
	Extension() bool

	IsExclusiveFor(namespace Namespace, kind Kind) bool
	CreatePointer() Pointer[Symbol]
}

// Origin identifies where a symbol was declared
type Origin interface {
	Framework() string
	Library() string
	Version() string
}

// Scope is a symbol that contributes nested symbols, such as the
// attributes declared on an element. The stack is the query's context stack.
type Scope interface {
	NestedSymbols(registry Registry, namespace Namespace, kind Kind, name string, stack []Symbol) []Symbol
	NestedCompletions(registry Registry, namespace Namespace, kind Kind, name string, position int, stack []Symbol) []CompletionItem
}

// Registry answers symbol queries against a snapshot of loaded contributions.
// The stack holds enclosing symbols, innermost last.
type Registry interface {
	NameMatch(namespace Namespace, kind Kind, name string, stack []Symbol) []Symbol
	CodeCompletion(namespace Namespace, kind Kind, name string, position int, stack []Symbol) []CompletionItem
	Names(namespace Namespace, kind Kind, name string, target NameTarget) []string
}
