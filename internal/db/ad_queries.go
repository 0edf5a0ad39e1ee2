package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NormalizedTitleExpr is the SQL form of normalize.Title + lowercasing,
// applied to ads.title. Cascades and the normalization job must match titles
// through the same expression or their decisions would diverge.
const NormalizedTitleExpr = `LOWER(REGEXP_REPLACE(BTRIM(title), '\s+', ' ', 'g'))`

// cleanedLandingPageExpr mirrors normalize.CleanURL far enough for grouping:
// query string stripped, "www." dropped after the scheme, lowercased.
const cleanedLandingPageExpr = `LOWER(REGEXP_REPLACE(REGEXP_REPLACE(landing_page, '\?.*$', ''), '^(https?://)(www\.)?', '\1'))`

// allowedAdSortColumns whitelists operator-sortable columns.
var allowedAdSortColumns = map[string]string{
	"id":           "id",
	"category":     "category",
	"title":        "title",
	"landing_page": "landing_page",
	"occurrences":  "occurrences",
}

// AdListOptions controls the ads browser listing.
type AdListOptions struct {
	Country       string
	Date          string // YYYY-MM-DD
	UniqueURLs    bool
	EmptyCategory bool
	SortColumn    string
	SortAsc       bool
	Limit         int
	Offset        int
}

// AdItem is the read model returned to the ads browser.
type AdItem struct {
	ID          int64      `json:"id"`
	Country     string     `json:"country"`
	Date        *time.Time `json:"date,omitempty"`
	Title       string     `json:"title"`
	LandingPage string     `json:"landing_page"`
	Website     string     `json:"website,omitempty"`
	AdNetwork   string     `json:"ad_network,omitempty"`
	Device      string     `json:"device,omitempty"`
	Occurrences int        `json:"occurrences"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
}

const adItemColumns = `id, country, date, title, landing_page, website, ad_network, device, occurrences, category, type`

// ListAds lists ads for one country and observation date. UniqueURLs
// collapses rows to one representative per cleaned landing page (newest id
// wins); EmptyCategory keeps only rows still lacking a category.
func (p *Pool) ListAds(ctx context.Context, opts AdListOptions) (int64, []AdItem, error) {
	if strings.TrimSpace(opts.Country) == "" {
		return 0, nil, fmt.Errorf("country is required")
	}
	if strings.TrimSpace(opts.Date) == "" {
		return 0, nil, fmt.Errorf("date is required")
	}
	if opts.Limit <= 0 {
		return 0, nil, fmt.Errorf("limit must be > 0")
	}

	where := `WHERE country = $1 AND DATE(date) = $2::date`
	if opts.EmptyCategory {
		where += ` AND (category IS NULL OR category = '' OR LOWER(category) = 'unknown')`
	}

	sortCol, ok := allowedAdSortColumns[strings.TrimSpace(opts.SortColumn)]
	if !ok {
		sortCol = "id"
	}
	sortDir := "DESC"
	if opts.SortAsc {
		sortDir = "ASC"
	}

	var countQuery string
	if opts.UniqueURLs {
		countQuery = `SELECT COUNT(DISTINCT ` + cleanedLandingPageExpr + `) FROM ads ` + where
	} else {
		countQuery = `SELECT COUNT(*) FROM ads ` + where
	}

	var total int64
	if err := p.QueryRow(ctx, countQuery, opts.Country, opts.Date).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count ads: %w", err)
	}

	var dataQuery string
	if opts.UniqueURLs {
		// DISTINCT ON needs its own ordering; the requested sort is applied
		// over the deduplicated sub-select.
		dataQuery = `SELECT ` + adItemColumns + ` FROM (
SELECT DISTINCT ON (` + cleanedLandingPageExpr + `) ` + adItemColumns + `
FROM ads ` + where + `
ORDER BY ` + cleanedLandingPageExpr + `, id DESC
) sub ORDER BY ` + sortCol + ` ` + sortDir + ` LIMIT $3 OFFSET $4`
	} else {
		dataQuery = `SELECT ` + adItemColumns + ` FROM ads ` + where +
			` ORDER BY ` + sortCol + ` ` + sortDir + ` LIMIT $3 OFFSET $4`
	}

	rows, err := p.Query(ctx, dataQuery, opts.Country, opts.Date, opts.Limit, opts.Offset)
	if err != nil {
		return 0, nil, fmt.Errorf("query ads: %w", err)
	}
	defer rows.Close()

	items := make([]AdItem, 0, opts.Limit)
	for rows.Next() {
		var row AdItem
		if err := rows.Scan(
			&row.ID,
			&row.Country,
			&row.Date,
			&row.Title,
			&row.LandingPage,
			&row.Website,
			&row.AdNetwork,
			&row.Device,
			&row.Occurrences,
			&row.Category,
			&row.Type,
		); err != nil {
			return 0, nil, fmt.Errorf("scan ad row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate ad rows: %w", err)
	}

	return total, items, nil
}

// DistinctDates returns the observation dates available for a country,
// newest first.
func (p *Pool) DistinctDates(ctx context.Context, country string) ([]string, error) {
	if strings.TrimSpace(country) == "" {
		return nil, fmt.Errorf("country is required")
	}

	const q = `
SELECT DISTINCT date::date::text AS date_only
FROM ads
WHERE country = $1 AND date IS NOT NULL
ORDER BY date_only DESC
`

	rows, err := p.Query(ctx, q, country)
	if err != nil {
		return nil, fmt.Errorf("query distinct dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan date row: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate date rows: %w", err)
	}

	return dates, nil
}
