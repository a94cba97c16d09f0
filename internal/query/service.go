package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/dshills/websymbols-mcp/internal/registry"
	"github.com/dshills/websymbols-mcp/internal/storage"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// DefaultCacheSize is the number of query results kept when no size is given
const DefaultCacheSize = 1000

var (
	// ErrEmptyName is returned when a query has no name to work on
	ErrEmptyName = errors.New("name is required")

	// ErrUnknownReference is returned when a symbol path or context entry
	// does not resolve to any symbol
	ErrUnknownReference = errors.New("reference does not resolve to a symbol")

	// ErrInvalidPosition is returned when a completion position is outside the name
	ErrInvalidPosition = errors.New("position is outside the name")

	// ErrSearchUnavailable is returned by Search when no storage is configured
	ErrSearchUnavailable = errors.New("search requires storage")
)

// Target selects the symbol kind a query runs against
type Target struct {
	Namespace string
	Kind      string
}

func (t Target) qualified() (types.QualifiedKind, error) {
	qk := types.QualifiedKind{Namespace: types.Namespace(t.Namespace), Kind: types.Kind(t.Kind)}
	if err := qk.Validate(); err != nil {
		return qk, err
	}
	return qk, nil
}

// NamesRequest asks for the name forms of a name
type NamesRequest struct {
	Target
	Name       string
	NameTarget string // query, storage or completion; default query
}

// RenameRequest asks how an occurrence changes when a symbol is renamed
type RenameRequest struct {
	Target
	OldName    string
	NewName    string
	Occurrence string
}

// MatchRequest matches a name. Context lists enclosing symbol paths,
// outermost first, e.g. ["/html/elements/my-button"].
type MatchRequest struct {
	Target
	Name    string
	Context []string
}

// MatchResponse contains the matched symbols
type MatchResponse struct {
	Symbols  []SymbolInfo `json:"symbols"`
	CacheHit bool         `json:"cache_hit"`
}

// CompleteRequest asks for completions of Name at Position.
// A negative Position means the end of the name.
type CompleteRequest struct {
	Target
	Name              string
	Position          int
	Context           []string
	IncludeDeprecated bool
	Limit             int
}

// CompleteResponse contains completion proposals, best first
type CompleteResponse struct {
	Items    []CompletionInfo `json:"items"`
	Total    int              `json:"total"`
	CacheHit bool             `json:"cache_hit"`
}

// SearchRequest runs a full-text search over stored contributions
type SearchRequest struct {
	Query             string
	Limit             int
	Namespaces        []string
	Kinds             []string
	Libraries         []string
	TopLevelOnly      bool
	IncludeDeprecated bool
	IncludeAbstract   bool
}

// SearchHit is one full-text search result
type SearchHit struct {
	Path        string  `json:"path"`
	Namespace   string  `json:"namespace"`
	Kind        string  `json:"kind"`
	Name        string  `json:"name"`
	Library     string  `json:"library"`
	Version     string  `json:"version,omitempty"`
	Source      string  `json:"source"`
	Description string  `json:"description,omitempty"`
	IsPattern   bool    `json:"is_pattern,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty"`
	Score       float64 `json:"score"`
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Hits     []SearchHit   `json:"hits"`
	Duration time.Duration `json:"duration"`
}

// Status summarizes the catalog, the cache and the store
type Status struct {
	Framework         string          `json:"framework,omitempty"`
	Manifests         int             `json:"manifests"`
	ModificationCount int64           `json:"modification_count"`
	Kinds             []string        `json:"kinds"`
	Libraries         []LibraryInfo   `json:"libraries"`
	CacheEntries      int             `json:"cache_entries"`
	CacheHits         int64           `json:"cache_hits"`
	CacheMisses       int64           `json:"cache_misses"`
	Storage           *storage.Status `json:"storage,omitempty"`
}

// LibraryInfo describes one loaded manifest
type LibraryInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version,omitempty"`
	Source        string `json:"source"`
	Contributions int    `json:"contributions"`
}

// cacheKey identifies a query result within one catalog state
type cacheKey struct {
	op       string
	modCount int64
	qk       types.QualifiedKind
	name     string
	extra    string
	context  string
}

// Service answers symbol queries against the catalog
type Service struct {
	catalog *registry.Catalog
	storage storage.Storage
	cache   *lru.Cache[cacheKey, any]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewService creates a query service. store may be nil, which disables
// search and storage status. cacheSize <= 0 selects DefaultCacheSize.
func NewService(catalog *registry.Catalog, store storage.Storage, cacheSize int) *Service {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, any](cacheSize)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Service{
		catalog: catalog,
		storage: store,
		cache:   cache,
	}
}

// cached returns the value stored under key, computing it on a miss.
// Keys include the catalog modification count, so stale entries are never hit.
func (s *Service) cached(key cacheKey, compute func() (any, error)) (any, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return v, true, nil
	}
	s.misses.Add(1)
	v, err := compute()
	if err != nil {
		return nil, false, err
	}
	s.cache.Add(key, v)
	return v, false, nil
}

// Names returns the forms name takes for the requested target
func (s *Service) Names(ctx context.Context, req NamesRequest) ([]string, error) {
	qk, err := req.qualified()
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, ErrEmptyName
	}
	target := types.TargetQuery
	if req.NameTarget != "" {
		if target, err = types.ParseNameTarget(req.NameTarget); err != nil {
			return nil, err
		}
	}

	// Not cached: frameworks registered at runtime change results without
	// touching the catalog modification count.
	return s.catalog.Registry().Names(qk.Namespace, qk.Kind, req.Name, target), nil
}

// AdjustRename returns the new form of an occurrence of a renamed symbol
func (s *Service) AdjustRename(ctx context.Context, req RenameRequest) (string, error) {
	qk, err := req.qualified()
	if err != nil {
		return "", err
	}
	if req.OldName == "" || req.NewName == "" || req.Occurrence == "" {
		return "", ErrEmptyName
	}
	provider := s.catalog.Registry().NamesProvider()
	return provider.AdjustRename(qk.Namespace, qk.Kind, req.OldName, req.NewName, req.Occurrence), nil
}

// Match returns the symbols name matches in the requested context
func (s *Service) Match(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	qk, err := req.qualified()
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, ErrEmptyName
	}

	reg := s.catalog.Registry()
	key := cacheKey{op: "match", modCount: reg.ModificationCount(), qk: qk, name: req.Name,
		context: strings.Join(req.Context, "\x00")}
	v, hit, err := s.cached(key, func() (any, error) {
		stack, err := resolveContext(reg, req.Context)
		if err != nil {
			return nil, err
		}
		syms := reg.NameMatch(qk.Namespace, qk.Kind, req.Name, stack)
		out := make([]SymbolInfo, 0, len(syms))
		for _, sym := range syms {
			out = append(out, newSymbolInfo(sym, false))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("kind", qk.String()).
		Str("name", req.Name).
		Bool("cache_hit", hit).
		Msg("Name matched")
	return &MatchResponse{Symbols: v.([]SymbolInfo), CacheHit: hit}, nil
}

// Complete returns completion proposals for the name typed up to the position.
// Proposals that do not start with the typed prefix are dropped.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	qk, err := req.qualified()
	if err != nil {
		return nil, err
	}
	position := req.Position
	if position < 0 {
		position = len(req.Name)
	}
	if position > len(req.Name) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, req.Position)
	}

	reg := s.catalog.Registry()
	key := cacheKey{op: "complete", modCount: reg.ModificationCount(), qk: qk, name: req.Name,
		extra: fmt.Sprintf("%d|%t", position, req.IncludeDeprecated), context: strings.Join(req.Context, "\x00")}
	v, hit, err := s.cached(key, func() (any, error) {
		stack, err := resolveContext(reg, req.Context)
		if err != nil {
			return nil, err
		}
		items := reg.CodeCompletion(qk.Namespace, qk.Kind, req.Name, position, stack)
		return filterCompletions(items, req.Name, position, req.IncludeDeprecated), nil
	})
	if err != nil {
		return nil, err
	}

	all := v.([]CompletionInfo)
	resp := &CompleteResponse{Items: all, Total: len(all), CacheHit: hit}
	if req.Limit > 0 && len(all) > req.Limit {
		resp.Items = all[:req.Limit]
	}
	return resp, nil
}

// filterCompletions keeps the items matching the typed prefix, merges
// duplicates and orders the rest by priority, proximity and name
func filterCompletions(items []types.CompletionItem, name string, position int, includeDeprecated bool) []CompletionInfo {
	type key struct {
		name   string
		offset int
	}
	seen := make(map[key]int)
	out := make([]CompletionInfo, 0, len(items))
	for _, item := range items {
		if item.Deprecated && !includeDeprecated {
			continue
		}
		offset := item.Offset
		if offset < 0 || offset > position {
			continue
		}
		prefix := strings.ToLower(name[offset:position])
		if !strings.HasPrefix(strings.ToLower(item.Name), prefix) {
			continue
		}

		info := newCompletionInfo(item)
		k := key{item.Name, offset}
		if i, ok := seen[k]; ok {
			out[i].Symbols = append(out[i].Symbols, info.Symbols...)
			continue
		}
		seen[k] = len(out)
		out = append(out, info)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if pi != pj {
			return pi > pj
		}
		xi, xj := proximity(out[i].Proximity), proximity(out[j].Proximity)
		if xi != xj {
			return xi > xj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func priorityRank(name string) types.Priority {
	if name == "" {
		return types.PriorityNormal
	}
	p, err := types.ParsePriority(name)
	if err != nil {
		return types.PriorityNormal
	}
	return p
}

func proximity(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Symbol resolves a symbol path such as /html/elements/my-button/html/attributes/size
// and returns its details
func (s *Service) Symbol(ctx context.Context, path string, contextPaths []string) ([]SymbolInfo, error) {
	if path == "" {
		return nil, ErrEmptyName
	}
	reg := s.catalog.Registry()
	stack, err := resolveContext(reg, contextPaths)
	if err != nil {
		return nil, err
	}
	syms, err := resolvePath(reg, path, stack)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolInfo, 0, len(syms))
	for _, sym := range syms {
		out = append(out, newSymbolInfo(sym, true))
	}
	return out, nil
}

// Search runs a full-text search over the stored contributions
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if s.storage == nil {
		return nil, ErrSearchUnavailable
	}
	startTime := time.Now()

	limit := req.Limit
	if limit <= 0 {
		limit = 10 // Default limit
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	results, err := s.storage.SearchContributions(ctx, req.Query, limit, &storage.SearchFilters{
		Namespaces:        req.Namespaces,
		Kinds:             req.Kinds,
		Libraries:         req.Libraries,
		TopLevelOnly:      req.TopLevelOnly,
		IncludeDeprecated: req.IncludeDeprecated,
		IncludeAbstract:   req.IncludeAbstract,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		c := r.Contribution
		hits = append(hits, SearchHit{
			Path:        c.Path,
			Namespace:   c.Namespace,
			Kind:        c.Kind,
			Name:        c.Name,
			Library:     r.Library,
			Version:     r.Version,
			Source:      r.Source,
			Description: c.Description,
			IsPattern:   c.IsPattern,
			Deprecated:  c.Deprecated,
			Score:       r.Score,
		})
	}
	return &SearchResponse{Hits: hits, Duration: time.Since(startTime)}, nil
}

// Status summarizes the loaded catalog and the store
func (s *Service) Status(ctx context.Context) (*Status, error) {
	reg := s.catalog.Registry()
	status := &Status{
		Framework:         s.catalog.Framework(),
		Manifests:         len(reg.Containers()),
		ModificationCount: reg.ModificationCount(),
		Kinds:             make([]string, 0),
		Libraries:         make([]LibraryInfo, 0, len(reg.Containers())),
		CacheEntries:      s.cache.Len(),
		CacheHits:         s.hits.Load(),
		CacheMisses:       s.misses.Load(),
	}
	for _, qk := range reg.Kinds() {
		status.Kinds = append(status.Kinds, qk.String())
	}
	for _, c := range reg.Containers() {
		m := c.Manifest()
		status.Libraries = append(status.Libraries, LibraryInfo{
			Name:          m.Name,
			Version:       m.Version,
			Source:        c.Source(),
			Contributions: m.Count(),
		})
	}

	if s.storage != nil {
		stored, err := s.storage.GetStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get storage status: %w", err)
		}
		status.Storage = stored
	}
	return status, nil
}

// resolveContext resolves context paths, outermost first, into a symbol stack.
// Each path is resolved with the symbols before it on the stack.
func resolveContext(reg *registry.Registry, paths []string) ([]types.Symbol, error) {
	stack := make([]types.Symbol, 0, len(paths))
	for _, p := range paths {
		syms, err := resolvePath(reg, p, stack)
		if err != nil {
			return nil, err
		}
		stack = append(stack, syms[0])
	}
	return stack, nil
}

func resolvePath(reg *registry.Registry, p string, stack []types.Symbol) ([]types.Symbol, error) {
	path, err := webtypes.ParsePath(p, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownReference, p, err)
	}
	syms := reg.ResolveReference(path, stack)
	if len(syms) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, p)
	}
	return syms, nil
}
