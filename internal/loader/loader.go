package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/websymbols-mcp/internal/manifest"
	"github.com/dshills/websymbols-mcp/internal/registry"
	"github.com/dshills/websymbols-mcp/internal/storage"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
)

var (
	// ErrLoadInProgress is returned when a load is started while another runs
	ErrLoadInProgress = errors.New("load already in progress")

	// ErrPathNotFound is returned when a load root does not exist
	ErrPathNotFound = errors.New("path does not exist")

	// ErrNoRoots is returned when Load is called without paths
	ErrNoRoots = errors.New("no paths to load")
)

// Loader coordinates the loading pipeline: discover -> parse -> store -> register
type Loader struct {
	parser  *manifest.Parser
	storage storage.Storage
	catalog *registry.Catalog
	lock    LoadLock
}

// Config contains configuration for a load
type Config struct {
	Workers            int  // Number of concurrent workers (default: runtime.NumCPU())
	IncludeNodeModules bool // Whether to walk node_modules directories (default: false)
	Force              bool // Reload manifests whose content did not change
	KeepMissing        bool // Keep stored manifests whose files disappeared from a root
	Strict             bool // Treat validation warnings as errors
}

// Statistics contains statistics about a load
type Statistics struct {
	ManifestsLoaded   int
	ManifestsSkipped  int
	ManifestsFailed   int
	ManifestsRemoved  int
	ContributionCount int
	Duration          time.Duration
	ErrorMessages     []string
	Warnings          []string
}

// counters collects per-file outcomes from concurrent workers
type counters struct {
	loaded        int32
	skipped       int32
	failed        int32
	contributions int32

	mu       sync.Mutex // Protects errors and warnings
	errors   []string
	warnings []string
}

func (c *counters) fail(path string, err error) {
	atomic.AddInt32(&c.failed, 1)
	c.mu.Lock()
	c.errors = append(c.errors, fmt.Sprintf("%s: %v", path, err))
	c.mu.Unlock()
}

func (c *counters) warn(msg string) {
	c.mu.Lock()
	c.warnings = append(c.warnings, msg)
	c.mu.Unlock()
}

// New creates a new Loader that stores manifests in store and registers
// them in catalog
func New(store storage.Storage, catalog *registry.Catalog) *Loader {
	return &Loader{
		parser:  manifest.New(),
		storage: store,
		catalog: catalog,
	}
}

// Catalog returns the catalog manifests are registered in
func (l *Loader) Catalog() *registry.Catalog {
	return l.catalog
}

// Loading reports whether a load is running
func (l *Loader) Loading() bool {
	return l.lock.Held()
}

// Load discovers and loads the manifests under roots. A root may be a
// directory, a manifest file or a package.json. Only fatal errors (storage
// failures, cancellation) are returned; per-file failures are counted in
// the statistics.
func (l *Loader) Load(ctx context.Context, roots []string, config *Config) (*Statistics, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	if !l.lock.TryAcquire() {
		return nil, ErrLoadInProgress
	}
	defer l.lock.Release()

	if config == nil {
		config = &Config{}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
		Warnings:      make([]string, 0),
	}

	absRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		absRoots = append(absRoots, abs)
	}

	files, dirs, err := l.discover(absRoots, config, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to discover manifests: %w", err)
	}

	c := &counters{}
	if err := l.loadFiles(ctx, files, config, workers, c); err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}

	stats.ManifestsLoaded = int(c.loaded)
	stats.ManifestsSkipped = int(c.skipped)
	stats.ManifestsFailed = int(c.failed)
	stats.ContributionCount = int(c.contributions)
	stats.ErrorMessages = append(stats.ErrorMessages, c.errors...)
	stats.Warnings = append(stats.Warnings, c.warnings...)
	sort.Strings(stats.ErrorMessages)

	if !config.KeepMissing {
		removed, err := l.prune(ctx, dirs, files)
		if err != nil {
			return nil, fmt.Errorf("failed to prune manifests: %w", err)
		}
		stats.ManifestsRemoved = removed
	}

	stats.Duration = time.Since(startTime)
	run := &storage.LoadRun{
		Roots:             strings.Join(absRoots, ","),
		ManifestsLoaded:   stats.ManifestsLoaded,
		ManifestsSkipped:  stats.ManifestsSkipped,
		ManifestsFailed:   stats.ManifestsFailed,
		ManifestsRemoved:  stats.ManifestsRemoved,
		ContributionCount: stats.ContributionCount,
		Duration:          stats.Duration,
		StartedAt:         startTime,
	}
	if err := l.storage.RecordLoad(ctx, run); err != nil {
		return nil, err
	}

	log.Info().
		Strs("roots", absRoots).
		Int("loaded", stats.ManifestsLoaded).
		Int("skipped", stats.ManifestsSkipped).
		Int("failed", stats.ManifestsFailed).
		Int("removed", stats.ManifestsRemoved).
		Dur("duration", stats.Duration).
		Msg("Manifests loaded")
	return stats, nil
}

// discover resolves roots into the manifest files to load. It also returns
// the directory roots, whose stored manifests are pruned.
func (l *Loader) discover(roots []string, config *Config, stats *Statistics) ([]string, []string, error) {
	seen := make(map[string]bool)
	var files, dirs []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		if err != nil {
			return nil, nil, err
		}

		if !info.IsDir() {
			if filepath.Base(root) == manifest.PackageFile {
				refs, err := manifest.PackageReferences(root)
				if err != nil {
					stats.ErrorMessages = append(stats.ErrorMessages, err.Error())
					continue
				}
				for _, ref := range refs {
					add(ref)
				}
				continue
			}
			add(root)
			continue
		}

		dirs = append(dirs, root)
		found, err := discoverFiles(root, config, stats)
		if err != nil {
			return nil, nil, err
		}
		for _, path := range found {
			add(path)
		}
	}

	sort.Strings(files)
	return files, dirs, nil
}

// discoverFiles finds all manifests under rootPath, including the ones
// package.json files point at
func discoverFiles(rootPath string, config *Config, stats *Statistics) ([]string, error) {
	var files []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			// Skip node_modules unless explicitly included
			if !config.IncludeNodeModules && info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Name() == manifest.PackageFile {
			refs, err := manifest.PackageReferences(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Skipping package file")
				stats.ErrorMessages = append(stats.ErrorMessages, err.Error())
				return nil
			}
			files = append(files, refs...)
			return nil
		}

		if manifest.Match(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// loadFiles loads files concurrently
func (l *Loader) loadFiles(ctx context.Context, files []string, config *Config, workers int, c *counters) error {
	// Create worker pool with semaphore
	semaphore := make(chan struct{}, workers)

	g, gctx := errgroup.WithContext(ctx)
dispatch:
	for _, path := range files {
		select {
		case <-gctx.Done():
			break dispatch
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		g.Go(func() error {
			defer func() { <-semaphore }() // Release semaphore
			return l.loadFile(gctx, path, config, c)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// loadFile loads a single manifest. Only storage failures are returned.
func (l *Loader) loadFile(ctx context.Context, path string, config *Config, c *counters) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hash, _, _, err := computeFileHash(path)
	if err != nil {
		c.fail(path, err)
		return nil
	}

	if !config.Force {
		unchanged, err := l.unchanged(ctx, path, hash)
		if err != nil {
			return err
		}
		if unchanged {
			atomic.AddInt32(&c.skipped, 1)
			return nil
		}
	}

	parser := l.parser
	if config.Strict {
		parser = &manifest.Parser{Strict: true}
	}
	result, err := parser.ParseFile(path)
	if err != nil {
		c.fail(path, err)
		return nil
	}

	var contributions []*storage.Contribution
	if !result.HasErrors() {
		contributions = Flatten(result.Manifest)
	}
	if err := l.store(ctx, result, contributions); err != nil {
		return err
	}

	for _, w := range result.Warnings {
		log.Warn().Str("path", path).Msg(w.Message)
		c.warn(fmt.Sprintf("%s: %s", path, w.Message))
	}

	if result.HasErrors() {
		if err := l.catalog.Remove(path); err != nil && !errors.Is(err, registry.ErrNotFound) {
			return err
		}
		c.fail(path, result.Err())
		return nil
	}

	if _, err := l.catalog.Add(path, hex.EncodeToString(result.Hash[:]), result.Manifest,
		webtypes.DirHost(filepath.Dir(path))); err != nil {
		c.fail(path, err)
		return nil
	}

	atomic.AddInt32(&c.loaded, 1)
	atomic.AddInt32(&c.contributions, int32(len(contributions)))
	return nil
}

// unchanged reports whether the stored manifest and the registered
// container both match hash
func (l *Loader) unchanged(ctx context.Context, path string, hash [32]byte) (bool, error) {
	existing, err := l.storage.GetManifest(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		// New manifest, needs loading
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if existing.ContentHash != hash || !existing.Usable() {
		return false, nil
	}

	container, ok := l.catalog.BySource(path)
	return ok && container.Hash() == hex.EncodeToString(hash[:]), nil
}

// store replaces the stored manifest and its contributions in one transaction
func (l *Loader) store(ctx context.Context, result *manifest.Result, contributions []*storage.Contribution) error {
	tx, err := l.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	record := &storage.Manifest{
		Source:            result.Source,
		ContentHash:       result.Hash,
		Content:           result.Content,
		ModTime:           result.ModTime,
		SizeBytes:         result.Size,
		ContributionCount: len(contributions),
	}
	if result.HasErrors() {
		msg := result.Err().Error()
		record.ParseError = &msg
	} else {
		record.Library = result.Manifest.Name
		record.Version = result.Manifest.Version
		record.Framework = result.Manifest.Framework
	}

	if err := tx.UpsertManifest(ctx, record); err != nil {
		return err
	}
	if err := tx.DeleteContributionsByManifest(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to delete old contributions: %w", err)
	}
	for _, contribution := range contributions {
		contribution.ManifestID = record.ID
		if err := tx.InsertContribution(ctx, contribution); err != nil {
			return fmt.Errorf("failed to store contribution: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// prune drops stored and registered manifests under dirs that were not
// discovered in this load
func (l *Loader) prune(ctx context.Context, dirs, files []string) (int, error) {
	if len(dirs) == 0 {
		return 0, nil
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}
	stale := func(source string) bool {
		return !present[source] && underAny(source, dirs)
	}

	removed := 0
	stored, err := l.storage.ListManifests(ctx)
	if err != nil {
		return 0, err
	}
	for _, m := range stored {
		if !stale(m.Source) {
			continue
		}
		if err := l.storage.DeleteManifest(ctx, m.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, err
		}
		removed++
		log.Debug().Str("source", m.Source).Msg("Removed missing manifest")
	}

	for _, container := range l.catalog.Containers() {
		if stale(container.Source()) {
			_ = l.catalog.Remove(container.Source())
		}
	}
	return removed, nil
}

func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Restore registers every usable stored manifest in the catalog without
// reading the manifest files. It returns the number of restored manifests.
func (l *Loader) Restore(ctx context.Context) (int, error) {
	stored, err := l.storage.ListManifests(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list manifests: %w", err)
	}

	restored := 0
	for _, m := range stored {
		if !m.Usable() {
			continue
		}
		result := l.parser.Parse(m.Source, m.Content)
		if result.HasErrors() {
			log.Warn().Err(result.Err()).Str("source", m.Source).Msg("Skipping stored manifest")
			continue
		}
		if _, err := l.catalog.Add(m.Source, hex.EncodeToString(m.ContentHash[:]), result.Manifest,
			webtypes.DirHost(filepath.Dir(m.Source))); err != nil {
			return restored, err
		}
		restored++
	}

	log.Info().Int("manifests", restored).Msg("Catalog restored from storage")
	return restored, nil
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, time.Time, int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}
	defer func() { _ = file.Close() }()

	// Get file info
	info, err := file.Stat()
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	// Compute hash
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))

	return result, info.ModTime(), info.Size(), nil
}
