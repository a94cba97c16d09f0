// Package registry keeps the loaded manifests and answers symbol queries
// against them.
//
// A Catalog holds one Container per manifest source. Adding a manifest from a
// source that is already loaded replaces its container, so pointers into the
// old container stop resolving. Catalog.Registry returns an immutable snapshot
// which implements webtypes.Registry:
//
//   - NameMatch and CodeCompletion consult the scopes on the context stack,
//     innermost first, and stop at the first scope exclusive for the queried
//     kind before falling back to top-level contributions
//   - ResolveReference resolves "extends" and item paths, abstract symbols included
//   - Names resolves names through a provider layered from the name-conversion
//     declarations of every manifest
package registry
