package types

// MatchProblem flags a name segment that could not be matched cleanly
type MatchProblem string

const (
	ProblemNone                MatchProblem = ""
	ProblemMissingRequiredPart MatchProblem = "missing-required-part"
	ProblemUnknownItem         MatchProblem = "unknown-item"
	ProblemDuplicate           MatchProblem = "duplicate"
)

// NameSegment spans [Start, End) of a matched name
type NameSegment struct {
	Start       int
	End         int
	Symbols     []Symbol
	Problem     MatchProblem
	DisplayName string

	// SymbolKinds lists the kinds that could have matched an unknown item,
	// for diagnostics and completion.
	SymbolKinds []QualifiedKind
}

// NewSegment builds a problem-free segment over [start, end)
func NewSegment(start, end int, symbols ...Symbol) NameSegment {
	return NameSegment{Start: start, End: end, Symbols: symbols}
}

// WithOffset returns a copy of the segment shifted right by offset
func (s NameSegment) WithOffset(offset int) NameSegment {
	s.Start += offset
	s.End += offset
	return s
}

// Len returns the width of the segment
func (s NameSegment) Len() int {
	return s.End - s.Start
}

// HasProblem reports whether the segment carries a match problem
func (s NameSegment) HasProblem() bool {
	return s.Problem != ProblemNone
}

// Match is a composite symbol produced by matching a name against a pattern.
// Its attributes are taken from the first symbol found in its segments.
type Match struct {
	name      string
	namespace Namespace
	kind      Kind
	origin    Origin
	segments  []NameSegment
}

// NewMatch creates a composite match over segments
func NewMatch(name string, namespace Namespace, kind Kind, origin Origin, segments []NameSegment) *Match {
	return &Match{
		name:      name,
		namespace: namespace,
		kind:      kind,
		origin:    origin,
		segments:  segments,
	}
}

func (m *Match) primary() Symbol {
	for _, seg := range m.segments {
		for _, sym := range seg.Symbols {
			if sym != nil {
				return sym
			}
		}
	}
	return nil
}

func (m *Match) Namespace() Namespace        { return m.namespace }
func (m *Match) Kind() Kind                  { return m.kind }
func (m *Match) Name() string                { return m.name }
func (m *Match) MatchedName() string         { return m.name }
func (m *Match) Origin() Origin              { return m.origin }
func (m *Match) NameSegments() []NameSegment { return m.segments }

// Problems returns the segments that carry a match problem
func (m *Match) Problems() []NameSegment {
	var out []NameSegment
	for _, seg := range m.segments {
		if seg.HasProblem() {
			out = append(out, seg)
		}
	}
	return out
}

func (m *Match) Description() string {
	if p := m.primary(); p != nil {
		return p.Description()
	}
	return ""
}

func (m *Match) DescriptionSections() map[string]string {
	if p := m.primary(); p != nil {
		return p.DescriptionSections()
	}
	return nil
}

func (m *Match) DocURL() string {
	if p := m.primary(); p != nil {
		return p.DocURL()
	}
	return ""
}

func (m *Match) Icon() string {
	if p := m.primary(); p != nil {
		return p.Icon()
	}
	return ""
}

func (m *Match) Type() any {
	if p := m.primary(); p != nil {
		return p.Type()
	}
	return nil
}

func (m *Match) Location() *Location {
	if p := m.primary(); p != nil {
		return p.Location()
	}
	return nil
}

func (m *Match) Source() any {
	if p := m.primary(); p != nil {
		return p.Source()
	}
	return nil
}

func (m *Match) AttributeValue() *AttributeValue {
	if p := m.primary(); p != nil {
		return p.AttributeValue()
	}
	return nil
}

func (m *Match) Priority() *Priority {
	if p := m.primary(); p != nil {
		return p.Priority()
	}
	return nil
}

func (m *Match) Proximity() *int {
	if p := m.primary(); p != nil {
		return p.Proximity()
	}
	return nil
}

func (m *Match) Required() *bool {
	if p := m.primary(); p != nil {
		return p.Required()
	}
	return nil
}

func (m *Match) DefaultValue() *string {
	if p := m.primary(); p != nil {
		return p.DefaultValue()
	}
	return nil
}

func (m *Match) Properties() map[string]any {
	if p := m.primary(); p != nil {
		return p.Properties()
	}
	return nil
}

// Deprecated reports whether any matched part is deprecated
func (m *Match) Deprecated() bool {
	return m.anySymbol(Symbol.Deprecated)
}

func (m *Match) Experimental() bool {
	return m.anySymbol(Symbol.Experimental)
}

func (m *Match) Virtual() bool {
	if p := m.primary(); p != nil {
		return p.Virtual()
	}
	return false
}

func (m *Match) Abstract() bool {
	if p := m.primary(); p != nil {
		return p.Abstract()
	}
	return false
}

func (m *Match) Extension() bool {
	if p := m.primary(); p != nil {
		return p.Extension()
	}
	return false
}

func (m *Match) IsExclusiveFor(namespace Namespace, kind Kind) bool {
	if p := m.primary(); p != nil {
		return p.IsExclusiveFor(namespace, kind)
	}
	return false
}

func (m *Match) anySymbol(pred func(Symbol) bool) bool {
	for _, seg := range m.segments {
		for _, sym := range seg.Symbols {
			if sym != nil && pred(sym) {
				return true
			}
		}
	}
	return false
}

// CreatePointer captures pointers to every segment symbol; the match is gone
// as soon as any of them is.
func (m *Match) CreatePointer() Pointer[Symbol] {
	type segmentPointer struct {
		segment NameSegment
		symbols []Pointer[Symbol]
	}
	ptrs := make([]segmentPointer, len(m.segments))
	for i, seg := range m.segments {
		sp := segmentPointer{segment: seg}
		for _, sym := range seg.Symbols {
			sp.symbols = append(sp.symbols, sym.CreatePointer())
		}
		sp.segment.Symbols = nil
		ptrs[i] = sp
	}
	name, namespace, kind, origin := m.name, m.namespace, m.kind, m.origin

	return PointerFunc[Symbol](func() (Symbol, bool) {
		segments := make([]NameSegment, len(ptrs))
		for i, sp := range ptrs {
			symbols, ok := DereferenceAll(sp.symbols)
			if !ok {
				return nil, false
			}
			seg := sp.segment
			if len(symbols) > 0 {
				seg.Symbols = symbols
			}
			segments[i] = seg
		}
		return NewMatch(name, namespace, kind, origin, segments), true
	})
}
