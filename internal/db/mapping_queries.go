package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// URLMappingItem is the read model for URL mapping listings.
type URLMappingItem struct {
	ID         int64     `json:"id"`
	CleanedURL string    `json:"cleaned_url"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListURLMappings lists URL rules newest first, optionally filtered by a
// substring search over the cleaned URL or the category.
func (p *Pool) ListURLMappings(ctx context.Context, search string, limit, offset int) (int64, []URLMappingItem, error) {
	if limit <= 0 {
		return 0, nil, fmt.Errorf("limit must be > 0")
	}

	pattern := ""
	if strings.TrimSpace(search) != "" {
		pattern = "%" + strings.TrimSpace(search) + "%"
	}

	const countQuery = `
SELECT COUNT(*)
FROM url_mappings
WHERE ($1 = '' OR cleaned_url ILIKE $1 OR category ILIKE $1)
`

	var total int64
	if err := p.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count url mappings: %w", err)
	}

	const rowsQuery = `
SELECT id, cleaned_url, category, created_at
FROM url_mappings
WHERE ($1 = '' OR cleaned_url ILIKE $1 OR category ILIKE $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

	rows, err := p.Query(ctx, rowsQuery, pattern, limit, offset)
	if err != nil {
		return 0, nil, fmt.Errorf("query url mappings: %w", err)
	}
	defer rows.Close()

	items := make([]URLMappingItem, 0, limit)
	for rows.Next() {
		var row URLMappingItem
		if err := rows.Scan(&row.ID, &row.CleanedURL, &row.Category, &row.CreatedAt); err != nil {
			return 0, nil, fmt.Errorf("scan url mapping row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate url mapping rows: %w", err)
	}

	return total, items, nil
}

// GetURLMapping fetches one URL rule by id. Returns ErrNoRows when missing.
func (p *Pool) GetURLMapping(ctx context.Context, id int64) (*URLMappingItem, error) {
	const q = `
SELECT id, cleaned_url, category, created_at
FROM url_mappings
WHERE id = $1
`

	var row URLMappingItem
	if err := p.QueryRow(ctx, q, id).Scan(&row.ID, &row.CleanedURL, &row.Category, &row.CreatedAt); err != nil {
		return nil, err
	}
	return &row, nil
}
