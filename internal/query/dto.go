package query

import (
	"sort"

	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// SymbolInfo is the transport view of a matched or resolved symbol
type SymbolInfo struct {
	Namespace   string `json:"namespace"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	MatchedName string `json:"matched_name"`
	Library     string `json:"library,omitempty"`
	Version     string `json:"version,omitempty"`
	Framework   string `json:"framework,omitempty"`

	Description string            `json:"description,omitempty"`
	Sections    map[string]string `json:"sections,omitempty"`
	DocURL      string            `json:"doc_url,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	Type        any               `json:"type,omitempty"`
	Location    *types.Location   `json:"location,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	Proximity   *int              `json:"proximity,omitempty"`
	Required    *bool             `json:"required,omitempty"`
	Default     *string           `json:"default,omitempty"`

	AttributeValue *AttributeValueInfo `json:"attribute_value,omitempty"`

	Deprecated   bool `json:"deprecated,omitempty"`
	Experimental bool `json:"experimental,omitempty"`
	Virtual      bool `json:"virtual,omitempty"`
	Abstract     bool `json:"abstract,omitempty"`
	Extension    bool `json:"extension,omitempty"`

	Segments    []SegmentInfo `json:"segments,omitempty"`
	NestedKinds []string      `json:"nested_kinds,omitempty"`
}

// AttributeValueInfo describes the value an attribute accepts
type AttributeValueInfo struct {
	Kind     string  `json:"kind,omitempty"`
	Type     string  `json:"type,omitempty"`
	Required *bool   `json:"required,omitempty"`
	Default  *string `json:"default,omitempty"`
}

// SegmentInfo is one matched part of a name
type SegmentInfo struct {
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Problem     string   `json:"problem,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Symbols     []string `json:"symbols,omitempty"`
	Expected    []string `json:"expected,omitempty"`
}

// CompletionInfo is one completion proposal
type CompletionInfo struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Offset      int      `json:"offset"`
	Priority    string   `json:"priority,omitempty"`
	Proximity   *int     `json:"proximity,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Symbols     []string `json:"symbols,omitempty"`
}

// symbolRef renders sym as /namespace/kind/name
func symbolRef(sym types.Symbol) string {
	return types.QualifiedKind{Namespace: sym.Namespace(), Kind: sym.Kind()}.String() + "/" + sym.Name()
}

func symbolRefs(syms []types.Symbol) []string {
	if len(syms) == 0 {
		return nil
	}
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = symbolRef(s)
	}
	return out
}

// newSymbolInfo converts sym. Detailed attributes are only filled when
// detailed is set, as they may render markup or load icons.
func newSymbolInfo(sym types.Symbol, detailed bool) SymbolInfo {
	info := SymbolInfo{
		Namespace:    string(sym.Namespace()),
		Kind:         string(sym.Kind()),
		Name:         sym.Name(),
		MatchedName:  sym.MatchedName(),
		DocURL:       sym.DocURL(),
		Deprecated:   sym.Deprecated(),
		Experimental: sym.Experimental(),
		Virtual:      sym.Virtual(),
		Abstract:     sym.Abstract(),
		Extension:    sym.Extension(),
	}
	if origin := sym.Origin(); origin != nil {
		info.Library = origin.Library()
		info.Version = origin.Version()
		info.Framework = origin.Framework()
	}
	if p := sym.Priority(); p != nil {
		info.Priority = p.String()
	}
	for _, seg := range sym.NameSegments() {
		info.Segments = append(info.Segments, newSegmentInfo(seg))
	}
	if !detailed {
		return info
	}

	info.Description = sym.Description()
	if sections := sym.DescriptionSections(); len(sections) > 0 {
		info.Sections = sections
	}
	info.Icon = sym.Icon()
	info.Type = sym.Type()
	info.Location = sym.Location()
	info.Proximity = sym.Proximity()
	info.Required = sym.Required()
	info.Default = sym.DefaultValue()
	if av := sym.AttributeValue(); av != nil {
		info.AttributeValue = &AttributeValueInfo{
			Kind:     av.Kind,
			Type:     av.Type,
			Required: av.Required,
			Default:  av.Default,
		}
	}
	if ws, ok := sym.(*webtypes.Symbol); ok {
		for _, qk := range ws.NestedKinds() {
			info.NestedKinds = append(info.NestedKinds, qk.String())
		}
		sort.Strings(info.NestedKinds)
	}
	return info
}

func newSegmentInfo(seg types.NameSegment) SegmentInfo {
	info := SegmentInfo{
		Start:       seg.Start,
		End:         seg.End,
		Problem:     string(seg.Problem),
		DisplayName: seg.DisplayName,
		Symbols:     symbolRefs(seg.Symbols),
	}
	for _, qk := range seg.SymbolKinds {
		info.Expected = append(info.Expected, qk.String())
	}
	return info
}

func newCompletionInfo(item types.CompletionItem) CompletionInfo {
	info := CompletionInfo{
		Name:        item.Name,
		DisplayName: item.DisplayName,
		Offset:      item.Offset,
		Proximity:   item.Proximity,
		Deprecated:  item.Deprecated,
		Symbols:     symbolRefs(item.Symbols),
	}
	if item.Priority != nil {
		info.Priority = item.Priority.String()
	}
	return info
}
