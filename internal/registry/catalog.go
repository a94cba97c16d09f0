package registry

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

var (
	// ErrNilManifest is returned when adding a nil manifest
	ErrNilManifest = errors.New("manifest is nil")

	// ErrNotFound is returned when a container does not exist
	ErrNotFound = errors.New("container not found")
)

// Catalog holds the loaded containers, one per manifest source. It is safe
// for concurrent use; readers take immutable Registry snapshots.
type Catalog struct {
	framework  string
	frameworks names.Frameworks
	rules      []names.Rules

	mu       sync.RWMutex
	byID     map[string]*Container
	bySource map[string]*Container

	modCount atomic.Int64
	snapshot atomic.Pointer[Registry]
}

// NewCatalog creates an empty catalog for framework (may be empty).
// frameworks may be nil; rules are appended after manifest-declared layers.
func NewCatalog(framework string, frameworks names.Frameworks, rules ...names.Rules) *Catalog {
	return &Catalog{
		framework:  framework,
		frameworks: frameworks,
		rules:      rules,
		byID:       make(map[string]*Container),
		bySource:   make(map[string]*Container),
	}
}

// Framework returns the framework the catalog resolves names for
func (c *Catalog) Framework() string {
	return c.framework
}

// Add registers the manifest loaded from source, replacing any container
// previously loaded from the same source.
func (c *Catalog) Add(source, hash string, m *webtypes.Manifest, host webtypes.Host) (*Container, error) {
	if m == nil {
		return nil, ErrNilManifest
	}
	container := newContainer(c, uuid.NewString(), source, hash, m, host)

	c.mu.Lock()
	if old, ok := c.bySource[source]; ok {
		delete(c.byID, old.id)
	}
	c.byID[container.id] = container
	c.bySource[source] = container
	c.mu.Unlock()

	c.changed()
	log.Debug().
		Str("source", source).
		Str("library", m.Name).
		Int("contributions", m.Count()).
		Msg("Catalog container added")
	return container, nil
}

// Remove drops the container loaded from source
func (c *Catalog) Remove(source string) error {
	c.mu.Lock()
	old, ok := c.bySource[source]
	if ok {
		delete(c.bySource, source)
		delete(c.byID, old.id)
	}
	c.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	c.changed()
	return nil
}

// Clear drops every container
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.byID = make(map[string]*Container)
	c.bySource = make(map[string]*Container)
	c.mu.Unlock()
	c.changed()
}

// Container returns the container with id
func (c *Catalog) Container(id string) (*Container, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	container, ok := c.byID[id]
	return container, ok
}

// BySource returns the container loaded from source
func (c *Catalog) BySource(source string) (*Container, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	container, ok := c.bySource[source]
	return container, ok
}

// Containers returns the current containers ordered by source
func (c *Catalog) Containers() []*Container {
	c.mu.RLock()
	out := make([]*Container, 0, len(c.byID))
	for _, container := range c.byID {
		out = append(out, container)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].source < out[j].source })
	return out
}

// Len returns the number of containers
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// ModificationCount increases on every change to the catalog
func (c *Catalog) ModificationCount() int64 {
	return c.modCount.Load()
}

// Registry returns a snapshot of the current containers. Snapshots are
// cached until the catalog changes.
func (c *Catalog) Registry() *Registry {
	if r := c.snapshot.Load(); r != nil && r.modCount == c.modCount.Load() {
		return r
	}
	modCount := c.modCount.Load()
	r := newRegistry(c, c.Containers(), modCount)
	c.snapshot.Store(r)
	return r
}

func (c *Catalog) changed() {
	c.modCount.Add(1)
	c.snapshot.Store(nil)
}

func sortKinds(kinds []types.QualifiedKind) {
	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i].Namespace != kinds[j].Namespace {
			return kinds[i].Namespace < kinds[j].Namespace
		}
		return kinds[i].Kind < kinds[j].Kind
	})
}
