package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TitleMappingItem is the read model for title mapping listings.
type TitleMappingItem struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	TranslatedTitle string    `json:"translated_title,omitempty"`
	Language        string    `json:"language,omitempty"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListTitleMappings lists title rules newest first, optionally filtered by a
// substring search over title, translated title or category.
func (p *Pool) ListTitleMappings(ctx context.Context, search string, limit, offset int) (int64, []TitleMappingItem, error) {
	if limit <= 0 {
		return 0, nil, fmt.Errorf("limit must be > 0")
	}

	pattern := ""
	if strings.TrimSpace(search) != "" {
		pattern = "%" + strings.TrimSpace(search) + "%"
	}

	const countQuery = `
SELECT COUNT(*)
FROM title_mappings
WHERE ($1 = '' OR title ILIKE $1 OR translated_title ILIKE $1 OR category ILIKE $1)
`

	var total int64
	if err := p.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count title mappings: %w", err)
	}

	const rowsQuery = `
SELECT id, title, translated_title, language, category, created_at, updated_at
FROM title_mappings
WHERE ($1 = '' OR title ILIKE $1 OR translated_title ILIKE $1 OR category ILIKE $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

	rows, err := p.Query(ctx, rowsQuery, pattern, limit, offset)
	if err != nil {
		return 0, nil, fmt.Errorf("query title mappings: %w", err)
	}
	defer rows.Close()

	items := make([]TitleMappingItem, 0, limit)
	for rows.Next() {
		var row TitleMappingItem
		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.TranslatedTitle,
			&row.Language,
			&row.Category,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return 0, nil, fmt.Errorf("scan title mapping row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate title mapping rows: %w", err)
	}

	return total, items, nil
}

// GetTitleMapping fetches one title rule by id. Returns ErrNoRows when
// missing.
func (p *Pool) GetTitleMapping(ctx context.Context, id int64) (*TitleMappingItem, error) {
	const q = `
SELECT id, title, translated_title, language, category, created_at, updated_at
FROM title_mappings
WHERE id = $1
`

	var row TitleMappingItem
	if err := p.QueryRow(ctx, q, id).Scan(
		&row.ID,
		&row.Title,
		&row.TranslatedTitle,
		&row.Language,
		&row.Category,
		&row.CreatedAt,
		&row.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &row, nil
}
