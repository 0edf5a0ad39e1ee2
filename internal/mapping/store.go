// Package mapping owns the categorization rules: CRUD over the two rule
// tables, the cascades that keep ads consistent with rule changes, and the
// precedence resolver shared with the normalization job.
package mapping

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/globaltime"
	"github.com/AJMedia-landers/ads-console/internal/langdetect"
	"github.com/AJMedia-landers/ads-console/internal/normalize"
)

// Store coordinates rule mutations and their ad cascades. Every mutating
// call runs in one transaction: the rule row and every cascaded ad row
// commit together or not at all.
type Store struct {
	pool   *db.Pool
	logger zerolog.Logger
}

func NewStore(pool *db.Pool, logger zerolog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// URLRuleResult is a mutated URL rule plus the number of ads its cascade
// touched, surfaced to the operator for feedback.
type URLRuleResult struct {
	Mapping    db.URLMappingItem `json:"mapping"`
	AdsUpdated int64             `json:"ads_updated"`
}

// TitleRuleResult is the title-rule equivalent of URLRuleResult.
type TitleRuleResult struct {
	Mapping    db.TitleMappingItem `json:"mapping"`
	AdsUpdated int64               `json:"ads_updated"`
}

// CreateURLRule inserts a rule for the cleaned form of rawURL and cascades
// its category. Fails with ErrDuplicateRule when the cleaned URL already has
// a rule.
func (s *Store) CreateURLRule(ctx context.Context, rawURL, category string) (*URLRuleResult, error) {
	cleaned := normalize.CleanURL(strings.TrimSpace(rawURL))
	category = strings.TrimSpace(category)
	if cleaned == "" {
		return nil, fmt.Errorf("url is required")
	}
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existingID int64
	scanErr := tx.QueryRow(ctx, `SELECT id FROM url_mappings WHERE cleaned_url = $1`, cleaned).Scan(&existingID)
	if scanErr == nil {
		return nil, ErrDuplicateRule
	}
	if !db.IsNoRows(scanErr) {
		return nil, fmt.Errorf("look up url rule: %w", scanErr)
	}

	var result URLRuleResult
	const insert = `
INSERT INTO url_mappings (cleaned_url, category, created_at)
VALUES ($1, $2, $3)
RETURNING id, cleaned_url, category, created_at
`
	if err := tx.QueryRow(ctx, insert, cleaned, category, now).Scan(
		&result.Mapping.ID,
		&result.Mapping.CleanedURL,
		&result.Mapping.Category,
		&result.Mapping.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert url rule: %w", err)
	}

	result.AdsUpdated, err = applyURLCategory(ctx, tx, cleaned, category, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Str("cleaned_url", cleaned).
		Str("category", category).
		Int64("ads_updated", result.AdsUpdated).
		Msg("url rule created")

	return &result, nil
}

// UpdateURLRule changes an existing rule's category and re-cascades it.
func (s *Store) UpdateURLRule(ctx context.Context, id int64, category string) (*URLRuleResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var result URLRuleResult
	const update = `
UPDATE url_mappings
SET category = $1
WHERE id = $2
RETURNING id, cleaned_url, category, created_at
`
	scanErr := tx.QueryRow(ctx, update, category, id).Scan(
		&result.Mapping.ID,
		&result.Mapping.CleanedURL,
		&result.Mapping.Category,
		&result.Mapping.CreatedAt,
	)
	if db.IsNoRows(scanErr) {
		return nil, ErrRuleNotFound
	}
	if scanErr != nil {
		return nil, fmt.Errorf("update url rule: %w", scanErr)
	}

	result.AdsUpdated, err = applyURLCategory(ctx, tx, result.Mapping.CleanedURL, category, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Int64("id", id).
		Str("category", category).
		Int64("ads_updated", result.AdsUpdated).
		Msg("url rule updated")

	return &result, nil
}

// DeleteURLRule removes a rule. Already-categorized ads keep their category;
// only future cascades stop.
func (s *Store) DeleteURLRule(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM url_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete url rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}

	s.logger.Info().Int64("id", id).Msg("url rule deleted")
	return nil
}

// CreateTitleRule inserts a rule keyed by the whitespace-normalized title
// and cascades it to ads not already owned by a URL rule. The title's
// language is detected and stored; English titles double as their own
// translation when none is supplied.
func (s *Store) CreateTitleRule(ctx context.Context, rawTitle, category, translatedTitle string) (*TitleRuleResult, error) {
	normTitle := normalize.Title(rawTitle)
	category = strings.TrimSpace(category)
	translatedTitle = strings.TrimSpace(translatedTitle)
	if normTitle == "" {
		return nil, fmt.Errorf("title is required")
	}
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	language := langdetect.DetectISO6391(normTitle)
	if translatedTitle == "" && language == "en" {
		translatedTitle = normTitle
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existingID int64
	scanErr := tx.QueryRow(ctx, `SELECT id FROM title_mappings WHERE LOWER(title) = LOWER($1)`, normTitle).Scan(&existingID)
	if scanErr == nil {
		return nil, ErrDuplicateRule
	}
	if !db.IsNoRows(scanErr) {
		return nil, fmt.Errorf("look up title rule: %w", scanErr)
	}

	var result TitleRuleResult
	const insert = `
INSERT INTO title_mappings (title, translated_title, language, category, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING id, title, translated_title, language, category, created_at, updated_at
`
	if err := tx.QueryRow(ctx, insert, normTitle, translatedTitle, language, category, now).Scan(
		&result.Mapping.ID,
		&result.Mapping.Title,
		&result.Mapping.TranslatedTitle,
		&result.Mapping.Language,
		&result.Mapping.Category,
		&result.Mapping.CreatedAt,
		&result.Mapping.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert title rule: %w", err)
	}

	result.AdsUpdated, err = applyTitleCategory(ctx, tx, normTitle, category, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Str("title", normTitle).
		Str("category", category).
		Str("language", language).
		Int64("ads_updated", result.AdsUpdated).
		Msg("title rule created")

	return &result, nil
}

// UpdateTitleRule changes an existing title rule's category and re-cascades
// it with URL precedence protection.
func (s *Store) UpdateTitleRule(ctx context.Context, id int64, category string) (*TitleRuleResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var result TitleRuleResult
	const update = `
UPDATE title_mappings
SET category = $1, updated_at = $2
WHERE id = $3
RETURNING id, title, translated_title, language, category, created_at, updated_at
`
	scanErr := tx.QueryRow(ctx, update, category, now, id).Scan(
		&result.Mapping.ID,
		&result.Mapping.Title,
		&result.Mapping.TranslatedTitle,
		&result.Mapping.Language,
		&result.Mapping.Category,
		&result.Mapping.CreatedAt,
		&result.Mapping.UpdatedAt,
	)
	if db.IsNoRows(scanErr) {
		return nil, ErrRuleNotFound
	}
	if scanErr != nil {
		return nil, fmt.Errorf("update title rule: %w", scanErr)
	}

	result.AdsUpdated, err = applyTitleCategory(ctx, tx, result.Mapping.Title, category, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Int64("id", id).
		Str("category", category).
		Int64("ads_updated", result.AdsUpdated).
		Msg("title rule updated")

	return &result, nil
}

// DeleteTitleRule removes a title rule.
func (s *Store) DeleteTitleRule(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM title_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete title rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}

	s.logger.Info().Int64("id", id).Msg("title rule deleted")
	return nil
}

// CategorizeResult reports what one categorize-by-example action did, with
// URL and title contributions counted separately.
type CategorizeResult struct {
	URLRuleCreated    bool  `json:"url_rule_created"`
	URLMappingCount   int64 `json:"url_mapping_count"`
	TitleRuleCreated  bool  `json:"title_rule_created,omitempty"`
	TitleRuleApplied  bool  `json:"title_rule_applied,omitempty"`
	TitleMappingCount int64 `json:"title_mapping_count"`
}

// CategorizeAd is the "categorize ad by example" flow: a URL rule for the
// ad's landing page is resolved-or-created and cascaded first, then, when a
// title is supplied, a title rule is resolved-or-created and cascaded with
// URL precedence protection. One transaction covers all of it.
func (s *Store) CategorizeAd(ctx context.Context, landingPage, category, title string) (*CategorizeResult, error) {
	cleaned := normalize.CleanURL(strings.TrimSpace(landingPage))
	category = strings.TrimSpace(category)
	if cleaned == "" {
		return nil, fmt.Errorf("landing page is required")
	}
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var result CategorizeResult

	result.URLRuleCreated, err = upsertURLRule(ctx, tx, cleaned, category, now)
	if err != nil {
		return nil, err
	}
	result.URLMappingCount, err = applyURLCategory(ctx, tx, cleaned, category, now)
	if err != nil {
		return nil, err
	}

	if normTitle := normalize.Title(title); normTitle != "" {
		language := langdetect.DetectISO6391(normTitle)
		translated := ""
		if language == "en" {
			translated = normTitle
		}
		result.TitleRuleCreated, err = upsertTitleRule(ctx, tx, normTitle, category, translated, language, now)
		if err != nil {
			return nil, err
		}
		result.TitleRuleApplied = true
		result.TitleMappingCount, err = applyTitleCategory(ctx, tx, normTitle, category, now)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Str("cleaned_url", cleaned).
		Str("category", category).
		Bool("url_rule_created", result.URLRuleCreated).
		Int64("ads_from_url", result.URLMappingCount).
		Int64("ads_from_title", result.TitleMappingCount).
		Msg("ad categorized")

	return &result, nil
}

// MarkUninterested upserts the landing page's URL rule to the uninterested
// sentinel and deletes every matching ad row, so the landing page stops
// resurfacing in the browser. Returns the number of deleted ads.
func (s *Store) MarkUninterested(ctx context.Context, landingPage string) (int64, error) {
	cleaned := normalize.CleanURL(strings.TrimSpace(landingPage))
	if cleaned == "" {
		return 0, fmt.Errorf("landing page is required")
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := upsertURLRule(ctx, tx, cleaned, CategoryUninterested, now); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM ads WHERE landing_page ILIKE $1`, matchPattern(cleaned))
	if err != nil {
		return 0, fmt.Errorf("delete uninterested ads: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Str("cleaned_url", cleaned).
		Int64("rows_deleted", tag.RowsAffected()).
		Msg("landing page marked uninterested")

	return tag.RowsAffected(), nil
}

// MergeResult reports per-store row counts for one category merge.
type MergeResult struct {
	URLMappings   int64 `json:"mappings_updated"`
	TitleMappings int64 `json:"title_mappings_updated"`
	Ads           int64 `json:"ads_updated"`
}

// MergeCategories renames every row using any source label, in all three
// stores, to the target label in one atomic operation. Merging is
// idempotent and transitive: re-running a merge changes nothing, and
// chained merges end at the same labels as a direct merge.
func (s *Store) MergeCategories(ctx context.Context, sources []string, target string) (*MergeResult, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("target category is required")
	}

	cleaned := make([]string, 0, len(sources))
	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		if source == target {
			return nil, ErrMergeTargetInSources
		}
		cleaned = append(cleaned, source)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one source category is required")
	}

	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var result MergeResult
	for _, source := range cleaned {
		tag, err := tx.Exec(ctx, `UPDATE url_mappings SET category = $1 WHERE category = $2`, target, source)
		if err != nil {
			return nil, fmt.Errorf("merge url mappings: %w", err)
		}
		result.URLMappings += tag.RowsAffected()

		tag, err = tx.Exec(ctx, `UPDATE title_mappings SET category = $1, updated_at = $2 WHERE category = $3`, target, now, source)
		if err != nil {
			return nil, fmt.Errorf("merge title mappings: %w", err)
		}
		result.TitleMappings += tag.RowsAffected()

		tag, err = tx.Exec(ctx, `UPDATE ads SET category = $1, updated_at = $2 WHERE category = $3`, target, now, source)
		if err != nil {
			return nil, fmt.Errorf("merge ads: %w", err)
		}
		result.Ads += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info().
		Strs("sources", cleaned).
		Str("target", target).
		Int64("mappings", result.URLMappings).
		Int64("title_mappings", result.TitleMappings).
		Int64("ads", result.Ads).
		Msg("categories merged")

	return &result, nil
}
