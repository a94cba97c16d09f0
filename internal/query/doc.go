// Package query answers symbol queries for the transports.
//
// A Service works on the current registry snapshot of a catalog. Each
// operation validates its request, runs against the snapshot and converts
// the resulting symbols into plain, JSON-friendly values:
//
//	svc := query.NewService(catalog, store, 1000)
//
//	resp, err := svc.Match(ctx, query.MatchRequest{
//	    Target:  query.Target{Namespace: "html", Kind: "attributes"},
//	    Name:    "size",
//	    Context: []string{"/html/elements/my-button"},
//	})
//
// # Caching
//
// Names, Match and Complete results are kept in an LRU cache. Cache keys
// carry the catalog modification count, so a load or removal makes every
// earlier entry unreachable; the LRU evicts them over time.
//
// # Completion
//
// The registry proposes every name of the requested kind. Complete keeps the
// proposals that start with the text typed between the proposal offset and
// the cursor (case-insensitively), merges duplicates and orders the result
// by priority, proximity and name.
//
// # Search
//
// Search runs a full-text query over the contributions kept in storage and
// needs a store; a service without one returns ErrSearchUnavailable.
package query
