package db

import (
	"context"
	"fmt"
	"strings"
)

// CategoryWithCounts reports how often one label is used in each store.
type CategoryWithCounts struct {
	Category          string `json:"category"`
	MappingCount      int64  `json:"mapping_count"`
	TitleMappingCount int64  `json:"title_mapping_count"`
	AdCount           int64  `json:"ad_count"`
}

// DistinctCategories returns the category labels currently used by URL
// rules, sorted. This backs the category picker in the console.
func (p *Pool) DistinctCategories(ctx context.Context) ([]string, error) {
	const q = `
SELECT DISTINCT category
FROM url_mappings
WHERE category <> ''
ORDER BY category
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query distinct categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// ListCategoriesWithCounts returns every label in use across the three
// stores with per-store usage counts, optionally filtered by substring.
func (p *Pool) ListCategoriesWithCounts(ctx context.Context, search string, limit, offset int) (int64, []CategoryWithCounts, error) {
	if limit <= 0 {
		return 0, nil, fmt.Errorf("limit must be > 0")
	}

	pattern := ""
	if strings.TrimSpace(search) != "" {
		pattern = "%" + strings.TrimSpace(search) + "%"
	}

	const countQuery = `
WITH labels AS (
	SELECT category FROM url_mappings WHERE category <> ''
	UNION
	SELECT category FROM title_mappings WHERE category <> ''
	UNION
	SELECT category FROM ads WHERE category <> ''
)
SELECT COUNT(*) FROM labels WHERE ($1 = '' OR category ILIKE $1)
`

	var total int64
	if err := p.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count categories: %w", err)
	}

	const rowsQuery = `
WITH labels AS (
	SELECT category FROM url_mappings WHERE category <> ''
	UNION
	SELECT category FROM title_mappings WHERE category <> ''
	UNION
	SELECT category FROM ads WHERE category <> ''
)
SELECT
	l.category,
	(SELECT COUNT(*) FROM url_mappings m WHERE m.category = l.category),
	(SELECT COUNT(*) FROM title_mappings t WHERE t.category = l.category),
	(SELECT COUNT(*) FROM ads a WHERE a.category = l.category)
FROM labels l
WHERE ($1 = '' OR l.category ILIKE $1)
ORDER BY l.category
LIMIT $2 OFFSET $3
`

	rows, err := p.Query(ctx, rowsQuery, pattern, limit, offset)
	if err != nil {
		return 0, nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	items := make([]CategoryWithCounts, 0, limit)
	for rows.Next() {
		var row CategoryWithCounts
		if err := rows.Scan(&row.Category, &row.MappingCount, &row.TitleMappingCount, &row.AdCount); err != nil {
			return 0, nil, fmt.Errorf("scan category row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return total, items, nil
}

// CategoryUsageCounts returns each label's combined usage count across ads
// and both rule tables. The normalization job groups these by category key.
func (p *Pool) CategoryUsageCounts(ctx context.Context) (map[string]int, error) {
	const q = `
SELECT category, SUM(n)::bigint
FROM (
	SELECT category, COUNT(*) AS n FROM ads WHERE category <> '' GROUP BY category
	UNION ALL
	SELECT category, COUNT(*) AS n FROM url_mappings WHERE category <> '' GROUP BY category
	UNION ALL
	SELECT category, COUNT(*) AS n FROM title_mappings WHERE category <> '' GROUP BY category
) u
GROUP BY category
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query category usage: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			count    int64
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category usage row: %w", err)
		}
		counts[category] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category usage rows: %w", err)
	}

	return counts, nil
}
