package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery is returned when a search query has no searchable terms
	ErrEmptyQuery = errors.New("empty search query")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Manifest operations

const manifestColumns = `
	id, source, library, version, framework, content_hash, content, mod_time,
	size_bytes, parse_error, contribution_count, last_loaded_at, created_at, updated_at`

// upsertManifestWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertManifestWithQuerier(ctx context.Context, q querier, m *Manifest) error {
	query := `
		INSERT INTO manifests (source, library, version, framework, content_hash, content, mod_time,
		                       size_bytes, parse_error, contribution_count, last_loaded_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			library = excluded.library,
			version = excluded.version,
			framework = excluded.framework,
			content_hash = excluded.content_hash,
			content = excluded.content,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			parse_error = excluded.parse_error,
			contribution_count = excluded.contribution_count,
			last_loaded_at = excluded.last_loaded_at,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		m.Source, m.Library, m.Version, m.Framework, m.ContentHash[:], m.Content,
		m.ModTime, m.SizeBytes, m.ParseError, m.ContributionCount, now, now, now,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert manifest: %w", err)
	}

	m.LastLoadedAt = now
	m.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertManifest(ctx context.Context, m *Manifest) error {
	return s.upsertManifestWithQuerier(ctx, s.querier(), m)
}

func scanManifest(row interface{ Scan(...any) error }) (*Manifest, error) {
	var m Manifest
	var hash []byte
	var modTime, lastLoadedAt sql.NullTime
	var sizeBytes sql.NullInt64
	var parseError sql.NullString
	err := row.Scan(
		&m.ID, &m.Source, &m.Library, &m.Version, &m.Framework, &hash, &m.Content, &modTime,
		&sizeBytes, &parseError, &m.ContributionCount, &lastLoadedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(m.ContentHash[:], hash)
	if modTime.Valid {
		m.ModTime = modTime.Time
	}
	if lastLoadedAt.Valid {
		m.LastLoadedAt = lastLoadedAt.Time
	}
	m.SizeBytes = sizeBytes.Int64
	if parseError.Valid {
		m.ParseError = &parseError.String
	}
	return &m, nil
}

// getManifestWithQuerier fetches one manifest matching where
func (s *SQLiteStorage) getManifestWithQuerier(ctx context.Context, q querier, where string, arg any) (*Manifest, error) {
	query := `SELECT ` + manifestColumns + ` FROM manifests WHERE ` + where + ` LIMIT 1`
	m, err := scanManifest(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLiteStorage) GetManifest(ctx context.Context, source string) (*Manifest, error) {
	return s.getManifestWithQuerier(ctx, s.querier(), "source = ?", source)
}

func (s *SQLiteStorage) GetManifestByID(ctx context.Context, manifestID int64) (*Manifest, error) {
	return s.getManifestWithQuerier(ctx, s.querier(), "id = ?", manifestID)
}

func (s *SQLiteStorage) GetManifestByHash(ctx context.Context, contentHash [32]byte) (*Manifest, error) {
	return s.getManifestWithQuerier(ctx, s.querier(), "content_hash = ?", contentHash[:])
}

// deleteManifestWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteManifestWithQuerier(ctx context.Context, q querier, manifestID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM manifests WHERE id = ?`, manifestID)
	if err != nil {
		return fmt.Errorf("failed to delete manifest: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteManifest(ctx context.Context, manifestID int64) error {
	return s.deleteManifestWithQuerier(ctx, s.querier(), manifestID)
}

// listManifestsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listManifestsWithQuerier(ctx context.Context, q querier) ([]*Manifest, error) {
	query := `SELECT ` + manifestColumns + ` FROM manifests ORDER BY source`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	manifests := make([]*Manifest, 0)
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, rows.Err()
}

func (s *SQLiteStorage) ListManifests(ctx context.Context) ([]*Manifest, error) {
	return s.listManifestsWithQuerier(ctx, s.querier())
}

// Contribution operations

// insertContributionWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) insertContributionWithQuerier(ctx context.Context, q querier, c *Contribution) error {
	query := `
		INSERT INTO contributions (
			manifest_id, namespace, kind, name, path, depth, is_pattern, description, doc_url,
			priority, deprecated, experimental, abstract, virtual, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		c.ManifestID, c.Namespace, c.Kind, c.Name, c.Path, c.Depth, c.IsPattern, c.Description, c.DocURL,
		c.Priority, c.Deprecated, c.Experimental, c.Abstract, c.Virtual, now,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	c.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) InsertContribution(ctx context.Context, c *Contribution) error {
	return s.insertContributionWithQuerier(ctx, s.querier(), c)
}

const contributionColumns = `
	c.id, c.manifest_id, c.namespace, c.kind, c.name, c.path, c.depth, c.is_pattern,
	COALESCE(c.description, ''), COALESCE(c.doc_url, ''), COALESCE(c.priority, ''),
	c.deprecated, c.experimental, c.abstract, c.virtual, c.created_at`

func contributionFields(c *Contribution) []any {
	return []any{
		&c.ID, &c.ManifestID, &c.Namespace, &c.Kind, &c.Name, &c.Path, &c.Depth, &c.IsPattern,
		&c.Description, &c.DocURL, &c.Priority,
		&c.Deprecated, &c.Experimental, &c.Abstract, &c.Virtual, &c.CreatedAt,
	}
}

// listContributionsByManifestWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listContributionsByManifestWithQuerier(ctx context.Context, q querier, manifestID int64) ([]*Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions c WHERE c.manifest_id = ? ORDER BY c.id`
	rows, err := q.QueryContext(ctx, query, manifestID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	contributions := make([]*Contribution, 0)
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(contributionFields(&c)...); err != nil {
			return nil, err
		}
		contributions = append(contributions, &c)
	}
	return contributions, rows.Err()
}

func (s *SQLiteStorage) ListContributionsByManifest(ctx context.Context, manifestID int64) ([]*Contribution, error) {
	return s.listContributionsByManifestWithQuerier(ctx, s.querier(), manifestID)
}

// deleteContributionsByManifestWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteContributionsByManifestWithQuerier(ctx context.Context, q querier, manifestID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM contributions WHERE manifest_id = ?`, manifestID)
	return err
}

func (s *SQLiteStorage) DeleteContributionsByManifest(ctx context.Context, manifestID int64) error {
	return s.deleteContributionsByManifestWithQuerier(ctx, s.querier(), manifestID)
}

func (s *SQLiteStorage) SearchContributions(ctx context.Context, query string, limit int, filters *SearchFilters) ([]SearchResult, error) {
	return searchContributions(ctx, s.querier(), query, limit, filters)
}

// Load history

// recordLoadWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) recordLoadWithQuerier(ctx context.Context, q querier, run *LoadRun) error {
	query := `
		INSERT INTO load_runs (roots, manifests_loaded, manifests_skipped, manifests_failed,
		                       manifests_removed, contribution_count, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	err := q.QueryRowContext(ctx, query,
		run.Roots, run.ManifestsLoaded, run.ManifestsSkipped, run.ManifestsFailed,
		run.ManifestsRemoved, run.ContributionCount, run.Duration.Milliseconds(), run.StartedAt,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to record load: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) RecordLoad(ctx context.Context, run *LoadRun) error {
	return s.recordLoadWithQuerier(ctx, s.querier(), run)
}

// lastLoadWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) lastLoadWithQuerier(ctx context.Context, q querier) (*LoadRun, error) {
	query := `
		SELECT id, roots, manifests_loaded, manifests_skipped, manifests_failed,
		       manifests_removed, contribution_count, duration_ms, started_at
		FROM load_runs
		ORDER BY id DESC
		LIMIT 1
	`
	var run LoadRun
	var durationMs int64
	err := q.QueryRowContext(ctx, query).Scan(
		&run.ID, &run.Roots, &run.ManifestsLoaded, &run.ManifestsSkipped, &run.ManifestsFailed,
		&run.ManifestsRemoved, &run.ContributionCount, &durationMs, &run.StartedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}

func (s *SQLiteStorage) LastLoad(ctx context.Context) (*LoadRun, error) {
	return s.lastLoadWithQuerier(ctx, s.querier())
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN parse_error IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM manifests
	`).Scan(&status.ManifestsCount, &status.FailedCount)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_pattern THEN 1 ELSE 0 END), 0)
		FROM contributions
	`).Scan(&status.ContributionsCount, &status.PatternsCount)
	if err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	lastLoad, err := s.LastLoad(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	status.LastLoad = lastLoad

	schemaVersion := ""
	if v, err := SchemaVersion(ctx, s.db); err == nil {
		schemaVersion = v.String()
	}

	var ftsName string
	ftsErr := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='contributions_fts'").Scan(&ftsName)

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    ftsErr == nil,
		SchemaVersion:      schemaVersion,
	}

	return status, nil
}

// Transaction implementations

func (t *sqliteTx) UpsertManifest(ctx context.Context, m *Manifest) error {
	return t.storage.upsertManifestWithQuerier(ctx, t.querier(), m)
}

func (t *sqliteTx) GetManifest(ctx context.Context, source string) (*Manifest, error) {
	return t.storage.getManifestWithQuerier(ctx, t.querier(), "source = ?", source)
}

func (t *sqliteTx) GetManifestByID(ctx context.Context, manifestID int64) (*Manifest, error) {
	return t.storage.getManifestWithQuerier(ctx, t.querier(), "id = ?", manifestID)
}

func (t *sqliteTx) GetManifestByHash(ctx context.Context, contentHash [32]byte) (*Manifest, error) {
	return t.storage.getManifestWithQuerier(ctx, t.querier(), "content_hash = ?", contentHash[:])
}

func (t *sqliteTx) DeleteManifest(ctx context.Context, manifestID int64) error {
	return t.storage.deleteManifestWithQuerier(ctx, t.querier(), manifestID)
}

func (t *sqliteTx) ListManifests(ctx context.Context) ([]*Manifest, error) {
	return t.storage.listManifestsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) InsertContribution(ctx context.Context, c *Contribution) error {
	return t.storage.insertContributionWithQuerier(ctx, t.querier(), c)
}

func (t *sqliteTx) ListContributionsByManifest(ctx context.Context, manifestID int64) ([]*Contribution, error) {
	return t.storage.listContributionsByManifestWithQuerier(ctx, t.querier(), manifestID)
}

func (t *sqliteTx) DeleteContributionsByManifest(ctx context.Context, manifestID int64) error {
	return t.storage.deleteContributionsByManifestWithQuerier(ctx, t.querier(), manifestID)
}

func (t *sqliteTx) SearchContributions(ctx context.Context, query string, limit int, filters *SearchFilters) ([]SearchResult, error) {
	return searchContributions(ctx, t.querier(), query, limit, filters)
}

func (t *sqliteTx) RecordLoad(ctx context.Context, run *LoadRun) error {
	return t.storage.recordLoadWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) LastLoad(ctx context.Context) (*LoadRun, error) {
	return t.storage.lastLoadWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return nil, errors.New("status is not available inside a transaction")
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
