// Package patterns implements the matcher used for dynamic symbol names.
//
// A pattern is matched against a name over a byte range [start, end) and
// produces ranked MatchResults made of NameSegments. Item placeholders delegate
// to an ItemsProvider, which usually looks names up in a registry. Segments the
// provider cannot resolve are reported with the UNKNOWN_ITEM problem instead of
// failing the match, so callers can show a diagnostic for the offending part.
//
// Patterns also produce completion proposals for a cursor position. Sequences
// walk their elements and stop at the first element that is incomplete at the
// cursor.
package patterns
