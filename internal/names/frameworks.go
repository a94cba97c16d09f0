package names

import (
	"strings"
	"sync"
	"unicode"

	"github.com/dshills/websymbols-mcp/pkg/types"
)

// Framework overrides name conversion for symbols of a UI framework.
// Returning an empty slice defers to the configured rules.
type Framework interface {
	ID() string
	Names(namespace types.Namespace, kind types.Kind, name string, target types.NameTarget) []string
}

// Frameworks looks up framework overrides by id
type Frameworks interface {
	Framework(id string) Framework
}

// FrameworkSet is a concurrency-safe Frameworks registry
type FrameworkSet struct {
	mu   sync.RWMutex
	byID map[string]Framework
}

// NewFrameworkSet creates a registry holding frameworks
func NewFrameworkSet(frameworks ...Framework) *FrameworkSet {
	s := &FrameworkSet{byID: make(map[string]Framework, len(frameworks))}
	for _, fw := range frameworks {
		s.byID[fw.ID()] = fw
	}
	return s
}

// DefaultFrameworks returns a registry with the built-in framework overrides
func DefaultFrameworks() *FrameworkSet {
	return NewFrameworkSet(Vue{})
}

// Register adds or replaces a framework
func (s *FrameworkSet) Register(fw Framework) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[fw.ID()] = fw
}

// Framework returns the framework with id, or nil
func (s *FrameworkSet) Framework(id string) Framework {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

// FrameworkVue is the id of the built-in Vue framework
const FrameworkVue = "vue"

// Vue stores component names in kebab-case and offers both the PascalCase
// and kebab-case spelling in completion.
type Vue struct{}

func (Vue) ID() string { return FrameworkVue }

func (Vue) Names(namespace types.Namespace, kind types.Kind, name string, target types.NameTarget) []string {
	if namespace != types.NamespaceHTML || (kind != types.KindElements && kind != types.KindVueComponents) {
		return nil
	}
	switch target {
	case types.TargetStorageKey, types.TargetQuery:
		return []string{ConventionKebabCase.Apply(name)}
	case types.TargetCompletionVariants:
		if !strings.ContainsFunc(name, unicode.IsUpper) {
			return nil
		}
		return []string{name, ConventionKebabCase.Apply(name)}
	}
	return nil
}
