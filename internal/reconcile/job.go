// Package reconcile implements the normalization job: a two-phase batch
// pass that deduplicates near-duplicate category labels across all three
// stores and backfills categories onto historical ads and unknown rules.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/globaltime"
)

// Job runs one normalization pass over the database. It never deletes data;
// it only rewrites empty, unknown or inconsistent labels, so re-running it
// is always safe and a second run over converged data reports zero counts.
type Job struct {
	pool   *db.Pool
	logger zerolog.Logger
}

func NewJob(pool *db.Pool, logger zerolog.Logger) *Job {
	return &Job{pool: pool, logger: logger}
}

// Execute runs both phases. On error the partial counts are discarded; the
// caller reports only the failure.
func (j *Job) Execute(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := j.dedupPhase(ctx, &stats); err != nil {
		return Stats{}, fmt.Errorf("dedup phase: %w", err)
	}
	if err := j.backfillPhase(ctx, &stats); err != nil {
		return Stats{}, fmt.Errorf("backfill phase: %w", err)
	}

	j.logger.Info().
		Interface("stats", stats).
		Msg("normalization run finished")

	return stats, nil
}

// dedupPhase snapshots label usage across the three stores, computes the
// rewrite plan as a pure function of that snapshot, and applies it in one
// transaction.
func (j *Job) dedupPhase(ctx context.Context, stats *Stats) error {
	usage, err := j.pool.CategoryUsageCounts(ctx)
	if err != nil {
		return err
	}

	plan := BuildRewritePlan(usage)
	if len(plan) == 0 {
		return nil
	}

	j.logger.Info().Int("rewrites", len(plan)).Msg("applying category rewrite plan")

	now := globaltime.UTC()

	tx, err := j.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, rw := range plan {
		tag, err := tx.Exec(ctx, `UPDATE url_mappings SET category = $1 WHERE category = $2`, rw.To, rw.From)
		if err != nil {
			return fmt.Errorf("rewrite url mappings %q: %w", rw.From, err)
		}
		stats.Deduplicated.URLMappings += tag.RowsAffected()

		tag, err = tx.Exec(ctx, `UPDATE title_mappings SET category = $1, updated_at = $2 WHERE category = $3`, rw.To, now, rw.From)
		if err != nil {
			return fmt.Errorf("rewrite title mappings %q: %w", rw.From, err)
		}
		stats.Deduplicated.TitleMappings += tag.RowsAffected()

		tag, err = tx.Exec(ctx, `UPDATE ads SET category = $1, updated_at = $2 WHERE category = $3`, rw.To, now, rw.From)
		if err != nil {
			return fmt.Errorf("rewrite ads %q: %w", rw.From, err)
		}
		stats.Deduplicated.Ads += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// backfillPhase snapshots both rule tables and the ads, computes the repair
// plan as a pure function of that snapshot, and applies it in one
// transaction.
func (j *Job) backfillPhase(ctx context.Context, stats *Stats) error {
	urlRules, err := j.loadURLRules(ctx)
	if err != nil {
		return err
	}
	titleRules, err := j.loadTitleRules(ctx)
	if err != nil {
		return err
	}
	ads, err := j.loadAds(ctx)
	if err != nil {
		return err
	}

	plan := BuildBackfillPlan(urlRules, titleRules, ads)
	if plan.Empty() {
		return nil
	}

	now := globaltime.UTC()

	tx, err := j.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, fix := range plan.URLRuleFixes {
		if _, err := tx.Exec(ctx, `UPDATE url_mappings SET category = $1 WHERE id = $2`, fix.Category, fix.ID); err != nil {
			return fmt.Errorf("fix url mapping %d: %w", fix.ID, err)
		}
		stats.Backcategorised.URLMappingsFixed++
	}
	for _, fix := range plan.TitleRuleFixes {
		if _, err := tx.Exec(ctx, `UPDATE title_mappings SET category = $1, updated_at = $2 WHERE id = $3`, fix.Category, now, fix.ID); err != nil {
			return fmt.Errorf("fix title mapping %d: %w", fix.ID, err)
		}
		stats.Backcategorised.TitleMappingsFixed++
	}

	const updateAd = `UPDATE ads SET category = $1, type = $2, updated_at = $3 WHERE id = $4`
	for _, fix := range plan.AdFixes {
		if _, err := tx.Exec(ctx, updateAd, fix.Category, fix.Type, now, fix.ID); err != nil {
			return fmt.Errorf("backfill ad %d: %w", fix.ID, err)
		}
		switch fix.Type {
		case db.TypeURLMapping:
			stats.Backcategorised.AdsFromURLMappings++
		case db.TypeTitleMapping:
			stats.Backcategorised.AdsFromTitleMappings++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (j *Job) loadURLRules(ctx context.Context) ([]URLRuleSnapshot, error) {
	const q = `SELECT id, cleaned_url, category FROM url_mappings ORDER BY id`

	rows, err := j.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query url rules: %w", err)
	}
	defer rows.Close()

	var rules []URLRuleSnapshot
	for rows.Next() {
		var rule URLRuleSnapshot
		if err := rows.Scan(&rule.ID, &rule.CleanedURL, &rule.Category); err != nil {
			return nil, fmt.Errorf("scan url rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate url rules: %w", err)
	}

	return rules, nil
}

func (j *Job) loadTitleRules(ctx context.Context) ([]TitleRuleSnapshot, error) {
	const q = `SELECT id, title, category FROM title_mappings ORDER BY id`

	rows, err := j.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query title rules: %w", err)
	}
	defer rows.Close()

	var rules []TitleRuleSnapshot
	for rows.Next() {
		var rule TitleRuleSnapshot
		if err := rows.Scan(&rule.ID, &rule.Title, &rule.Category); err != nil {
			return nil, fmt.Errorf("scan title rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate title rules: %w", err)
	}

	return rules, nil
}

func (j *Job) loadAds(ctx context.Context) ([]AdSnapshot, error) {
	const q = `SELECT id, title, landing_page, COALESCE(category, '') FROM ads ORDER BY id`

	rows, err := j.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query ads: %w", err)
	}
	defer rows.Close()

	var ads []AdSnapshot
	for rows.Next() {
		var ad AdSnapshot
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.LandingPage, &ad.Category); err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ads: %w", err)
	}

	return ads, nil
}
