// Package types provides shared type definitions for the websymbols MCP server.
//
// This package defines domain types used across the names provider, the pattern
// engine, the web-types contribution layer and the registry, including symbols,
// name segments, completion items and pointers.
//
// # Core Types
//
// Symbols live in a space partitioned by namespace and kind:
//
//	qk := types.QualifiedKind{Namespace: types.NamespaceHTML, Kind: types.KindElements}
//
// Symbol is the read-only view consumers query for attributes. A symbol matched
// through a pattern is reported as a *Match whose name segments point at the
// symbols that matched each part of the name:
//
//	for _, seg := range match.NameSegments() {
//	    fmt.Println(seg.Start, seg.End, seg.Problem)
//	}
//
// # Pointers
//
// Pointer is a detached handle which re-resolves its target against current
// state. Dereference reports false when the target, or anything it was resolved
// against, is gone:
//
//	ptr := sym.CreatePointer()
//	if sym, ok := ptr.Dereference(); ok {
//	    ...
//	}
//
// # Absent values
//
// Optional attributes use the zero value (empty string, nil pointer, nil slice)
// for "absent"; expected mismatches are never reported as errors.
package types
