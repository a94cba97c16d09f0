// Package loader coordinates discovery and loading of web-types manifests.
//
// The loader walks the given roots, parses every manifest it finds, stores
// the manifest and its flattened contributions, and registers the decoded
// manifest in the catalog that serves name matching.
//
// # Basic Usage
//
//	ldr := loader.New(store, catalog)
//
//	stats, err := ldr.Load(ctx, []string{"/path/to/project"}, &loader.Config{
//	    Workers: 4,
//	})
//
//	fmt.Printf("Loaded %d manifests in %v\n", stats.ManifestsLoaded, stats.Duration)
//
// # Discovery
//
// A root may be a directory, a manifest file or a package.json. Directories
// are walked recursively; hidden directories and node_modules are skipped.
// Files named web-types.json or ending in .web-types.json, .web-types.yaml
// or .web-types.yml are manifests. A package.json contributes the files its
// "web-types" field points at.
//
// # Incremental Loading
//
// Unchanged manifests are skipped. A manifest is unchanged when its SHA-256
// content hash equals both the stored hash and the hash of the container
// registered for it. Force reloads everything:
//
//	stats, _ := ldr.Load(ctx, roots, &loader.Config{Force: true})
//
// Manifests stored under a directory root whose files disappeared are
// removed from storage and from the catalog unless KeepMissing is set.
//
// # Restoring
//
// Stored manifests keep their raw content, so a server can rebuild its
// catalog at startup without touching the files:
//
//	n, err := ldr.Restore(ctx)
//
// # Error Handling
//
// Load only returns fatal errors (storage failure, cancellation, a missing
// root). Manifests that fail to read or decode are stored with their parse
// error, removed from the catalog, and counted in Statistics.ManifestsFailed.
// Only one load runs at a time; a concurrent call returns ErrLoadInProgress.
package loader
