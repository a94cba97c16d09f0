package storage

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// searchContributions performs BM25 full-text search using FTS5
func searchContributions(ctx context.Context, q querier, query string, limit int, filters *SearchFilters) ([]SearchResult, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 20
	}

	sqlQuery := `
		SELECT ` + contributionColumns + `,
			m.library, m.version, m.source,
			bm25(contributions_fts) AS score
		FROM contributions_fts
		INNER JOIN contributions c ON contributions_fts.rowid = c.id
		INNER JOIN manifests m ON c.manifest_id = m.id
		WHERE contributions_fts MATCH ?
	`
	args := []interface{}{sanitized}

	sqlQuery, args = applySearchFilters(sqlQuery, args, filters)

	// Order by BM25 score (lower is better) and limit
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchResult, 0)
	for rows.Next() {
		var c Contribution
		var result SearchResult
		var bm25 float64
		fields := append(contributionFields(&c), &result.Library, &result.Version, &result.Source, &bm25)
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}

		// BM25 scores are negative, lower is better; typically in [-50, 0]
		result.Score = 1.0 / (1.0 + math.Abs(bm25)/50.0)
		if filters != nil && filters.MinRelevance > 0 && result.Score < filters.MinRelevance {
			continue
		}
		result.Contribution = &c
		results = append(results, result)
	}
	return results, rows.Err()
}

// applySearchFilters adds WHERE clause filters for contribution search
func applySearchFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query + " AND c.deprecated = 0 AND c.abstract = 0", args
	}

	query, args = appendIn(query, args, "c.namespace", filters.Namespaces)
	query, args = appendIn(query, args, "c.kind", filters.Kinds)
	query, args = appendIn(query, args, "m.library", filters.Libraries)

	if filters.TopLevelOnly {
		query += " AND c.depth = 0"
	}
	if !filters.IncludeDeprecated {
		query += " AND c.deprecated = 0"
	}
	if !filters.IncludeAbstract {
		query += " AND c.abstract = 0"
	}
	return query, args
}

func appendIn(query string, args []interface{}, column string, values []string) (string, []interface{}) {
	if len(values) == 0 {
		return query, args
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args = append(args, v)
	}
	return query + " AND " + column + " IN (" + strings.Join(placeholders, ",") + ")", args
}

// sanitizeFTSQuery turns free text into an FTS5 query: every run of letters
// and digits becomes a quoted prefix term, so operators and punctuation in
// the input are never interpreted by FTS5.
func sanitizeFTSQuery(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + term + `"*`
	}
	return strings.Join(quoted, " ")
}
