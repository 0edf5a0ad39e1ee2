package reconcile

import (
	"sort"
	"strings"

	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/mapping"
	"github.com/AJMedia-landers/ads-console/internal/normalize"
)

// URLRuleSnapshot is one url_mappings row as read for the backfill pass.
type URLRuleSnapshot struct {
	ID         int64
	CleanedURL string
	Category   string
}

// TitleRuleSnapshot is one title_mappings row as read for the backfill pass.
type TitleRuleSnapshot struct {
	ID       int64
	Title    string
	Category string
}

// AdSnapshot is one ads row as read for the backfill pass.
type AdSnapshot struct {
	ID          int64
	Title       string
	LandingPage string
	Category    string
}

// RuleFix assigns a repaired category to one rule row.
type RuleFix struct {
	ID       int64
	Category string
}

// AdFix assigns a resolved category and owning rule type to one ad row.
type AdFix struct {
	ID       int64
	Category string
	Type     string
}

// BackfillPlan is everything the backfill pass decided to write.
type BackfillPlan struct {
	URLRuleFixes   []RuleFix
	TitleRuleFixes []RuleFix
	AdFixes        []AdFix
}

func (p BackfillPlan) Empty() bool {
	return len(p.URLRuleFixes) == 0 && len(p.TitleRuleFixes) == 0 && len(p.AdFixes) == 0
}

// BuildBackfillPlan computes the backfill pass as a pure function of a
// database snapshot. Unknown URL rules adopt a known category from the title
// rules of their matching ads; unknown title rules adopt one from the URL
// rules behind their ads' landing pages; every still-unknown ad is then
// routed through the shared precedence resolver against the repaired rule
// sets. Candidate orders are sorted, so the plan is deterministic, and a
// plan computed over an already-converged snapshot is empty.
func BuildBackfillPlan(urlRules []URLRuleSnapshot, titleRules []TitleRuleSnapshot, ads []AdSnapshot) BackfillPlan {
	var plan BackfillPlan

	type urlEntry struct {
		URLRuleSnapshot
		base string
	}
	urls := make([]urlEntry, len(urlRules))
	for i, rule := range urlRules {
		urls[i] = urlEntry{rule, strings.ToLower(normalize.BaseURL(rule.CleanedURL))}
	}

	titles := append([]TitleRuleSnapshot(nil), titleRules...)
	titleByKey := make(map[string]*TitleRuleSnapshot, len(titles))
	for i := range titles {
		titleByKey[strings.ToLower(normalize.Title(titles[i].Title))] = &titles[i]
	}

	lowerPages := make([]string, len(ads))
	normTitles := make([]string, len(ads))
	for i, ad := range ads {
		lowerPages[i] = strings.ToLower(ad.LandingPage)
		normTitles[i] = strings.ToLower(normalize.Title(ad.Title))
	}

	for i := range urls {
		rule := &urls[i]
		if !normalize.IsUnknownCategory(rule.Category) || rule.base == "" {
			continue
		}
		var candidates []string
		seen := make(map[string]struct{})
		for j := range ads {
			if !strings.Contains(lowerPages[j], rule.base) {
				continue
			}
			if _, ok := seen[normTitles[j]]; ok {
				continue
			}
			seen[normTitles[j]] = struct{}{}
			candidates = append(candidates, normTitles[j])
		}
		sort.Strings(candidates)
		for _, key := range candidates {
			if tr, ok := titleByKey[key]; ok && !normalize.IsUnknownCategory(tr.Category) {
				rule.Category = tr.Category
				plan.URLRuleFixes = append(plan.URLRuleFixes, RuleFix{ID: rule.ID, Category: tr.Category})
				break
			}
		}
	}

	urlByKey := make(map[string]*urlEntry, len(urls))
	for i := range urls {
		urlByKey[urls[i].CleanedURL] = &urls[i]
	}

	for i := range titles {
		rule := &titles[i]
		if !normalize.IsUnknownCategory(rule.Category) {
			continue
		}
		key := strings.ToLower(normalize.Title(rule.Title))
		var pages []string
		seen := make(map[string]struct{})
		for j := range ads {
			if normTitles[j] != key {
				continue
			}
			if _, ok := seen[ads[j].LandingPage]; ok {
				continue
			}
			seen[ads[j].LandingPage] = struct{}{}
			pages = append(pages, ads[j].LandingPage)
		}
		sort.Strings(pages)
		for _, page := range pages {
			if ur, ok := urlByKey[normalize.CleanURL(page)]; ok && !normalize.IsUnknownCategory(ur.Category) {
				rule.Category = ur.Category
				plan.TitleRuleFixes = append(plan.TitleRuleFixes, RuleFix{ID: rule.ID, Category: ur.Category})
				break
			}
		}
	}

	for j := range ads {
		if !normalize.IsUnknownCategory(ads[j].Category) {
			continue
		}

		var urlMatch *db.URLMappingItem
		for i := range urls {
			rule := &urls[i]
			if rule.base == "" || !strings.Contains(lowerPages[j], rule.base) {
				continue
			}
			urlMatch = &db.URLMappingItem{ID: rule.ID, CleanedURL: rule.CleanedURL, Category: rule.Category}
			if !normalize.IsUnknownCategory(rule.Category) {
				break
			}
		}

		var titleMatch *db.TitleMappingItem
		if tr, ok := titleByKey[normTitles[j]]; ok {
			titleMatch = &db.TitleMappingItem{ID: tr.ID, Title: tr.Title, Category: tr.Category}
		}

		decision, ok := mapping.Resolve(urlMatch, titleMatch)
		if !ok {
			continue
		}
		plan.AdFixes = append(plan.AdFixes, AdFix{ID: ads[j].ID, Category: decision.Category, Type: decision.Type})
	}

	return plan
}
