// Package storage provides SQLite-based persistence for loaded web-types manifests.
//
// The storage layer manages:
//   - Manifest files with their SHA-256 content hashes and raw content
//   - A flattened index of every contribution (top-level and nested)
//   - Full-text search over contribution names, descriptions and paths
//   - The history of load operations
//
// The raw content lets a server restore its catalog at startup without
// touching the manifest files again.
//
// # Database Schema
//
// Tables:
//   - manifests: source path, library, version, framework, hash, content
//   - contributions: namespace, kind, name and path of each contribution
//   - contributions_fts: FTS5 full-text search index
//   - load_runs: counts and duration of each load
//   - schema_version: applied migrations
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.websymbols/symbols.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	m := &storage.Manifest{Source: path, Library: "vue", ContentHash: hash, Content: raw}
//	if err := db.UpsertManifest(ctx, m); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Replacing the contributions of a manifest is done in one transaction:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tx.Rollback() }()
//
//	_ = tx.UpsertManifest(ctx, m)
//	_ = tx.DeleteContributionsByManifest(ctx, m.ID)
//	for _, c := range contributions {
//	    _ = tx.InsertContribution(ctx, c)
//	}
//	return tx.Commit()
//
// # Full-Text Search
//
// Query using BM25 ranking:
//
//	results, err := db.SearchContributions(ctx, "button size", 10, &storage.SearchFilters{
//	    Namespaces: []string{"html"},
//	})
//
// Every word of the query is matched as a prefix. Deprecated and abstract
// contributions are skipped unless the filters include them.
//
// # Build Tags
//
// Pure Go build (default, or the purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires a C compiler and the sqlite_fts5 tag
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo,sqlite_fts5"
package storage
