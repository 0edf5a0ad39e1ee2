package reconcile

import (
	"reflect"
	"testing"

	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/normalize"
)

func TestBuildBackfillPlanURLRuleAdoptsTitleCategory(t *testing.T) {
	t.Parallel()

	urlRules := []URLRuleSnapshot{
		{ID: 1, CleanedURL: "https://acme.com/", Category: ""},
	}
	titleRules := []TitleRuleSnapshot{
		{ID: 7, Title: "Super Widget Sale", Category: "Retail"},
	}
	ads := []AdSnapshot{
		{ID: 10, Title: "Super  Widget   Sale", LandingPage: "https://acme.com/?utm=1", Category: ""},
		{ID: 11, Title: "Unrelated Promo", LandingPage: "https://acme.com/landing", Category: ""},
	}

	plan := BuildBackfillPlan(urlRules, titleRules, ads)

	wantURLFixes := []RuleFix{{ID: 1, Category: "Retail"}}
	if !reflect.DeepEqual(plan.URLRuleFixes, wantURLFixes) {
		t.Fatalf("url rule fixes = %v, want %v", plan.URLRuleFixes, wantURLFixes)
	}
	if len(plan.TitleRuleFixes) != 0 {
		t.Fatalf("title rule fixes = %v, want none", plan.TitleRuleFixes)
	}

	// Both ads match the repaired URL rule, so both backfill with URL
	// ownership, the "Super Widget Sale" one included.
	wantAdFixes := []AdFix{
		{ID: 10, Category: "Retail", Type: db.TypeURLMapping},
		{ID: 11, Category: "Retail", Type: db.TypeURLMapping},
	}
	if !reflect.DeepEqual(plan.AdFixes, wantAdFixes) {
		t.Fatalf("ad fixes = %v, want %v", plan.AdFixes, wantAdFixes)
	}
}

func TestBuildBackfillPlanTitleRuleAdoptsURLCategory(t *testing.T) {
	t.Parallel()

	urlRules := []URLRuleSnapshot{
		{ID: 2, CleanedURL: "https://shop.example/deals", Category: "Shopping"},
	}
	titleRules := []TitleRuleSnapshot{
		{ID: 8, Title: "Mega Deal Days", Category: "unknown"},
	}
	ads := []AdSnapshot{
		{ID: 20, Title: "Mega Deal Days", LandingPage: "https://www.shop.example/deals?ref=a", Category: ""},
	}

	plan := BuildBackfillPlan(urlRules, titleRules, ads)

	wantTitleFixes := []RuleFix{{ID: 8, Category: "Shopping"}}
	if !reflect.DeepEqual(plan.TitleRuleFixes, wantTitleFixes) {
		t.Fatalf("title rule fixes = %v, want %v", plan.TitleRuleFixes, wantTitleFixes)
	}
	if len(plan.URLRuleFixes) != 0 {
		t.Fatalf("url rule fixes = %v, want none", plan.URLRuleFixes)
	}

	wantAdFixes := []AdFix{{ID: 20, Category: "Shopping", Type: db.TypeURLMapping}}
	if !reflect.DeepEqual(plan.AdFixes, wantAdFixes) {
		t.Fatalf("ad fixes = %v, want %v", plan.AdFixes, wantAdFixes)
	}
}

func TestBuildBackfillPlanTitleRuleOwnsAdWithoutURLMatch(t *testing.T) {
	t.Parallel()

	titleRules := []TitleRuleSnapshot{
		{ID: 9, Title: "Casino Night Bonus", Category: "Gambling"},
	}
	ads := []AdSnapshot{
		{ID: 30, Title: "casino night bonus", LandingPage: "https://elsewhere.example/x", Category: ""},
	}

	plan := BuildBackfillPlan(nil, titleRules, ads)

	wantAdFixes := []AdFix{{ID: 30, Category: "Gambling", Type: db.TypeTitleMapping}}
	if !reflect.DeepEqual(plan.AdFixes, wantAdFixes) {
		t.Fatalf("ad fixes = %v, want %v", plan.AdFixes, wantAdFixes)
	}
}

func TestBuildBackfillPlanLeavesUnresolvableAdsAlone(t *testing.T) {
	t.Parallel()

	urlRules := []URLRuleSnapshot{
		{ID: 3, CleanedURL: "https://nohelp.example/", Category: "unknown"},
	}
	ads := []AdSnapshot{
		{ID: 40, Title: "Mystery Offer", LandingPage: "https://nohelp.example/page", Category: ""},
	}

	plan := BuildBackfillPlan(urlRules, nil, ads)
	if !plan.Empty() {
		t.Fatalf("plan = %+v, want empty", plan)
	}
}

func TestBuildBackfillPlanConverges(t *testing.T) {
	t.Parallel()

	urlRules := []URLRuleSnapshot{
		{ID: 1, CleanedURL: "https://acme.com/", Category: ""},
		{ID: 2, CleanedURL: "https://shop.example/deals", Category: "Shopping"},
	}
	titleRules := []TitleRuleSnapshot{
		{ID: 7, Title: "Super Widget Sale", Category: "Retail"},
		{ID: 8, Title: "Mega Deal Days", Category: ""},
	}
	ads := []AdSnapshot{
		{ID: 10, Title: "Super Widget Sale", LandingPage: "https://acme.com/?utm=1", Category: ""},
		{ID: 20, Title: "Mega Deal Days", LandingPage: "https://www.shop.example/deals?ref=a", Category: ""},
		{ID: 30, Title: "Already Done", LandingPage: "https://done.example/x", Category: "Finance"},
	}

	plan := BuildBackfillPlan(urlRules, titleRules, ads)
	if plan.Empty() {
		t.Fatal("expected a non-empty first plan")
	}

	applyBackfillPlan(plan, urlRules, titleRules, ads)

	if again := BuildBackfillPlan(urlRules, titleRules, ads); !again.Empty() {
		t.Fatalf("plan after applying plan = %+v, want empty", again)
	}
}

// applyBackfillPlan rewrites the snapshot slices in place the way the job's
// write transaction rewrites the tables.
func applyBackfillPlan(plan BackfillPlan, urlRules []URLRuleSnapshot, titleRules []TitleRuleSnapshot, ads []AdSnapshot) {
	for _, fix := range plan.URLRuleFixes {
		for i := range urlRules {
			if urlRules[i].ID == fix.ID {
				urlRules[i].Category = fix.Category
			}
		}
	}
	for _, fix := range plan.TitleRuleFixes {
		for i := range titleRules {
			if titleRules[i].ID == fix.ID {
				titleRules[i].Category = fix.Category
			}
		}
	}
	for _, fix := range plan.AdFixes {
		for i := range ads {
			if ads[i].ID == fix.ID {
				ads[i].Category = fix.Category
			}
		}
	}
}

func TestBuildBackfillPlanUsesCleanedLandingPageIdentity(t *testing.T) {
	t.Parallel()

	// The ad's landing page cleans to exactly the rule's identity key, slash
	// included, so the unknown title rule can adopt through it.
	if got := normalize.CleanURL("https://www.acme.com?utm=1"); got != "https://acme.com/" {
		t.Fatalf("CleanURL = %q, want %q", got, "https://acme.com/")
	}

	urlRules := []URLRuleSnapshot{
		{ID: 4, CleanedURL: "https://acme.com/", Category: "Retail"},
	}
	titleRules := []TitleRuleSnapshot{
		{ID: 9, Title: "Front Page Promo", Category: ""},
	}
	ads := []AdSnapshot{
		{ID: 50, Title: "Front Page Promo", LandingPage: "https://www.acme.com?utm=1", Category: "Retail"},
	}

	plan := BuildBackfillPlan(urlRules, titleRules, ads)
	wantTitleFixes := []RuleFix{{ID: 9, Category: "Retail"}}
	if !reflect.DeepEqual(plan.TitleRuleFixes, wantTitleFixes) {
		t.Fatalf("title rule fixes = %v, want %v", plan.TitleRuleFixes, wantTitleFixes)
	}
}
