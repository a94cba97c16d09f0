package loader

import (
	"sort"

	"github.com/dshills/websymbols-mcp/internal/storage"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// patternName labels pattern contributions that declare no name
const patternName = "<pattern>"

// Flatten returns one storage record per contribution of m, nested
// contributions included, in manifest order.
func Flatten(m *webtypes.Manifest) []*storage.Contribution {
	var out []*storage.Contribution
	for _, qk := range m.Kinds() {
		for _, c := range m.Contributions[qk] {
			out = flattenContribution(out, c, qk, "", 0)
		}
	}
	return out
}

func flattenContribution(out []*storage.Contribution, c *webtypes.Contribution, qk types.QualifiedKind,
	owner string, depth int) []*storage.Contribution {

	name := contributionName(c)
	path := owner + qk.String() + "/" + name

	record := &storage.Contribution{
		Namespace:    string(qk.Namespace),
		Kind:         string(qk.Kind),
		Name:         name,
		Path:         path,
		Depth:        depth,
		IsPattern:    c.Pattern != nil,
		Deprecated:   c.Deprecated,
		Experimental: c.Experimental,
		Abstract:     c.Abstract,
		Virtual:      c.Virtual,
	}
	if c.Description != nil {
		record.Description = *c.Description
	}
	if c.DocURL != nil {
		record.DocURL = *c.DocURL
	}
	if c.Priority != nil {
		record.Priority = c.Priority.String()
	}
	out = append(out, record)

	for _, nested := range nestedKinds(c) {
		for _, child := range c.Contributions[nested] {
			out = flattenContribution(out, child, nested, path, depth+1)
		}
	}
	return out
}

func contributionName(c *webtypes.Contribution) string {
	if c.Name != "" {
		return c.Name
	}
	if c.Pattern != nil {
		if c.Pattern.Regex != "" {
			return c.Pattern.Regex
		}
		if c.Pattern.Static != "" {
			return c.Pattern.Static
		}
	}
	return patternName
}

func nestedKinds(c *webtypes.Contribution) []types.QualifiedKind {
	kinds := make([]types.QualifiedKind, 0, len(c.Contributions))
	for qk := range c.Contributions {
		kinds = append(kinds, qk)
	}
	sortKinds(kinds)
	return kinds
}

func sortKinds(kinds []types.QualifiedKind) {
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].String() < kinds[j].String() })
}
