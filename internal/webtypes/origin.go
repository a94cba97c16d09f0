package webtypes

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// IconLoader resolves the icon reference declared by a contribution
type IconLoader interface {
	LoadIcon(ref string) (string, bool)
}

// SourceResolver resolves a declared source into a navigable location
type SourceResolver interface {
	ResolveLocation(src *types.Location) *types.Location
}

// TypeSupport turns a declared type into the host's type representation
type TypeSupport interface {
	ResolveType(raw any) any
}

// Host bundles the capabilities an origin uses to interpret its contributions.
// Nil members disable the corresponding attribute.
type Host struct {
	Icons   IconLoader
	Sources SourceResolver
	Types   TypeSupport
}

// DirHost resolves icons and sources relative to the directory a manifest was loaded from
func DirHost(dir string) Host {
	return Host{
		Icons:   FileIcons{Dir: dir},
		Sources: FileSources{Dir: dir},
		Types:   PlainTypes{},
	}
}

// Origin describes the library a contribution came from and how its
// descriptions, icons, sources and types are interpreted.
type Origin struct {
	framework string
	library   string
	version   string
	markup    Markup
	host      Host
}

// NewOrigin creates the origin shared by all contributions of m
func NewOrigin(m *Manifest, host Host) *Origin {
	markup := m.DescriptionMarkup
	if markup == "" {
		markup = MarkupNone
	}
	return &Origin{
		framework: m.Framework,
		library:   m.Name,
		version:   m.Version,
		markup:    markup,
		host:      host,
	}
}

func (o *Origin) Framework() string { return o.framework }
func (o *Origin) Library() string   { return o.library }
func (o *Origin) Version() string   { return o.version }
func (o *Origin) Markup() Markup    { return o.markup }

func (o *Origin) String() string {
	if o.version == "" {
		return o.library
	}
	return o.library + "@" + o.version
}

var markdownRenderer = markdown.New(markdown.HTML(true), markdown.Linkify(false), markdown.Typographer(false))

// RenderDescription converts a description to HTML according to the origin's markup
func (o *Origin) RenderDescription(text string) string {
	switch o.markup {
	case MarkupHTML:
		return text
	case MarkupMarkdown:
		return strings.TrimSpace(markdownRenderer.RenderToString([]byte(text)))
	default:
		return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	}
}

func (o *Origin) loadIcon(ref string) string {
	if o.host.Icons == nil {
		return ""
	}
	icon, ok := o.host.Icons.LoadIcon(ref)
	if !ok {
		return ""
	}
	return icon
}

func (o *Origin) resolveLocation(src *types.Location) *types.Location {
	if src == nil || o.host.Sources == nil {
		return nil
	}
	return o.host.Sources.ResolveLocation(src)
}

func (o *Origin) resolveType(raw any) any {
	if raw == nil || o.host.Types == nil {
		return nil
	}
	return o.host.Types.ResolveType(raw)
}

// FileIcons resolves icon paths relative to Dir. URLs are returned unchanged.
type FileIcons struct {
	Dir string
}

func (f FileIcons) LoadIcon(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if strings.HasPrefix(ref, "data:") || strings.Contains(ref, "://") {
		return ref, true
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.Dir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// FileSources resolves relative source files against Dir
type FileSources struct {
	Dir string
}

func (f FileSources) ResolveLocation(src *types.Location) *types.Location {
	loc := *src
	if loc.File != "" && !filepath.IsAbs(loc.File) {
		loc.File = filepath.Join(f.Dir, loc.File)
	}
	return &loc
}

// PlainTypes renders declared types as type expressions
type PlainTypes struct{}

func (PlainTypes) ResolveType(raw any) any {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := (PlainTypes{}).ResolveType(el).(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " | ")
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			if module, ok := v["module"].(string); ok && module != "" {
				return fmt.Sprintf("import(%q).%s", module, name)
			}
			return name
		}
		if expr, ok := v["expression"].(string); ok {
			return expr
		}
	}
	return nil
}
