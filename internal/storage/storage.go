package storage

import (
	"context"
	"time"
)

// Storage defines the interface for persisting loaded manifests and the
// searchable index of their contributions
type Storage interface {
	// Manifest operations
	UpsertManifest(ctx context.Context, manifest *Manifest) error
	GetManifest(ctx context.Context, source string) (*Manifest, error)
	GetManifestByID(ctx context.Context, manifestID int64) (*Manifest, error)
	GetManifestByHash(ctx context.Context, contentHash [32]byte) (*Manifest, error)
	DeleteManifest(ctx context.Context, manifestID int64) error
	ListManifests(ctx context.Context) ([]*Manifest, error)

	// Contribution operations
	InsertContribution(ctx context.Context, contribution *Contribution) error
	ListContributionsByManifest(ctx context.Context, manifestID int64) ([]*Contribution, error)
	DeleteContributionsByManifest(ctx context.Context, manifestID int64) error

	// Search operations
	SearchContributions(ctx context.Context, query string, limit int, filters *SearchFilters) ([]SearchResult, error)

	// Load history
	RecordLoad(ctx context.Context, run *LoadRun) error
	LastLoad(ctx context.Context) (*LoadRun, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Manifest represents a loaded web-types manifest file
type Manifest struct {
	ID                int64
	Source            string // Absolute path of the manifest file
	Library           string
	Version           string
	Framework         string
	ContentHash       [32]byte
	Content           []byte // Raw manifest, used to restore without the file
	ModTime           time.Time
	SizeBytes         int64
	ParseError        *string // Nullable
	ContributionCount int
	LastLoadedAt      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Usable reports whether the manifest decoded and can be restored
func (m *Manifest) Usable() bool {
	return m.ParseError == nil && len(m.Content) > 0
}

// Contribution is one searchable entry of a manifest. Nested contributions
// are stored with the full path of their owners.
type Contribution struct {
	ID           int64
	ManifestID   int64
	Namespace    string
	Kind         string
	Name         string
	Path         string // e.g. /html/elements/my-el/html/attributes/size
	Depth        int    // 0 for top-level contributions
	IsPattern    bool
	Description  string
	DocURL       string
	Priority     string
	Deprecated   bool
	Experimental bool
	Abstract     bool
	Virtual      bool
	CreatedAt    time.Time
}

// LoadRun records one load operation
type LoadRun struct {
	ID                int64
	Roots             string // Comma-separated roots that were loaded
	ManifestsLoaded   int
	ManifestsSkipped  int
	ManifestsFailed   int
	ManifestsRemoved  int
	ContributionCount int
	Duration          time.Duration
	StartedAt         time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	Namespaces        []string // Filter by namespace
	Kinds             []string // Filter by kind
	Libraries         []string // Filter by library name
	TopLevelOnly      bool     // Skip nested contributions
	IncludeDeprecated bool
	IncludeAbstract   bool
	MinRelevance      float64 // Minimum relevance score
}

// SearchResult is a contribution matched by full-text search
type SearchResult struct {
	Contribution *Contribution
	Library      string
	Version      string
	Source       string
	Score        float64 // Normalized BM25 score, higher is better
}

// Status contains statistics about the store
type Status struct {
	ManifestsCount     int
	FailedCount        int
	ContributionsCount int
	PatternsCount      int
	DatabaseSizeMB     float64
	LastLoad           *LoadRun
	Health             HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
	SchemaVersion      string
}
