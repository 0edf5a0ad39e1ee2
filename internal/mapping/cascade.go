package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/normalize"
)

// matchPattern builds the ILIKE pattern used to find ads belonging to a
// cleaned URL. Substring matching catches landing pages with tracking
// parameters, and also lets a base that prefixes a longer base
// ("example.com/a" vs "example.com/ab") over-match. Existing mappings were
// created against that behavior; tightening it would re-categorize ads.
func matchPattern(cleanedURL string) string {
	return "%" + normalize.BaseURL(cleanedURL) + "%"
}

// applyURLCategory propagates a URL rule's category to every ad whose
// landing page contains the rule's base URL. URL rules always win: rows
// previously categorized by a title rule or the AI pipeline are overwritten.
func applyURLCategory(ctx context.Context, tx db.Tx, cleanedURL, category string, now time.Time) (int64, error) {
	const q = `
UPDATE ads
SET category = $1, type = $2, updated_at = $3
WHERE landing_page ILIKE $4
`

	tag, err := tx.Exec(ctx, q, category, db.TypeURLMapping, now, matchPattern(cleanedURL))
	if err != nil {
		return 0, fmt.Errorf("cascade url category: %w", err)
	}
	return tag.RowsAffected(), nil
}

// applyTitleCategory propagates a title rule's category to ads with the same
// whitespace-normalized title, compared case-insensitively. Ads already
// categorized by a URL rule are never downgraded.
func applyTitleCategory(ctx context.Context, tx db.Tx, title, category string, now time.Time) (int64, error) {
	const q = `
UPDATE ads
SET category = $1, type = $2, updated_at = $3
WHERE ` + db.NormalizedTitleExpr + ` = $4
  AND type <> $5
`

	normTitle := strings.ToLower(normalize.Title(title))
	tag, err := tx.Exec(ctx, q, category, db.TypeTitleMapping, now, normTitle, db.TypeURLMapping)
	if err != nil {
		return 0, fmt.Errorf("cascade title category: %w", err)
	}
	return tag.RowsAffected(), nil
}

// upsertURLRule resolves-or-creates the URL rule for a cleaned URL and sets
// its category. The created flag lets callers report rule creation
// distinctly from a category change on an existing rule.
func upsertURLRule(ctx context.Context, tx db.Tx, cleanedURL, category string, now time.Time) (created bool, err error) {
	var id int64
	scanErr := tx.QueryRow(ctx, `SELECT id FROM url_mappings WHERE cleaned_url = $1`, cleanedURL).Scan(&id)
	switch {
	case scanErr == nil:
		if _, err := tx.Exec(ctx, `UPDATE url_mappings SET category = $1 WHERE id = $2`, category, id); err != nil {
			return false, fmt.Errorf("update url rule: %w", err)
		}
		return false, nil
	case db.IsNoRows(scanErr):
		const insert = `INSERT INTO url_mappings (cleaned_url, category, created_at) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, insert, cleanedURL, category, now); err != nil {
			return false, fmt.Errorf("insert url rule: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("look up url rule: %w", scanErr)
	}
}

// upsertTitleRule resolves-or-creates the title rule for a normalized title.
func upsertTitleRule(ctx context.Context, tx db.Tx, normTitle, category, translatedTitle, language string, now time.Time) (created bool, err error) {
	var id int64
	scanErr := tx.QueryRow(ctx, `SELECT id FROM title_mappings WHERE LOWER(title) = LOWER($1)`, normTitle).Scan(&id)
	switch {
	case scanErr == nil:
		if _, err := tx.Exec(ctx, `UPDATE title_mappings SET category = $1, updated_at = $2 WHERE id = $3`, category, now, id); err != nil {
			return false, fmt.Errorf("update title rule: %w", err)
		}
		return false, nil
	case db.IsNoRows(scanErr):
		const insert = `
INSERT INTO title_mappings (title, translated_title, language, category, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
`
		if _, err := tx.Exec(ctx, insert, normTitle, translatedTitle, language, category, now); err != nil {
			return false, fmt.Errorf("insert title rule: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("look up title rule: %w", scanErr)
	}
}
