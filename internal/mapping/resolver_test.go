package mapping

import (
	"testing"

	"github.com/AJMedia-landers/ads-console/internal/db"
)

func urlRule(category string) *db.URLMappingItem {
	return &db.URLMappingItem{ID: 1, CleanedURL: "https://example.com/a", Category: category}
}

func titleRule(category string) *db.TitleMappingItem {
	return &db.TitleMappingItem{ID: 1, Title: "Acme Sale", Category: category}
}

func TestResolveURLWins(t *testing.T) {
	t.Parallel()

	decision, ok := Resolve(urlRule("Gambling"), titleRule("Retail"))
	if !ok {
		t.Fatalf("expected a decision")
	}
	if decision.Category != "Gambling" || decision.Type != db.TypeURLMapping {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestResolveTitleOnlyWhenURLUnusable(t *testing.T) {
	t.Parallel()

	decision, ok := Resolve(nil, titleRule("Retail"))
	if !ok || decision.Category != "Retail" || decision.Type != db.TypeTitleMapping {
		t.Fatalf("unexpected decision: %+v ok=%v", decision, ok)
	}

	decision, ok = Resolve(urlRule("unknown"), titleRule("Retail"))
	if !ok || decision.Category != "Retail" || decision.Type != db.TypeTitleMapping {
		t.Fatalf("unknown url rule must defer to title rule: %+v ok=%v", decision, ok)
	}

	decision, ok = Resolve(urlRule(""), titleRule("Retail"))
	if !ok || decision.Type != db.TypeTitleMapping {
		t.Fatalf("empty url rule must defer to title rule: %+v ok=%v", decision, ok)
	}
}

func TestResolveUnchangedWhenNeitherUsable(t *testing.T) {
	t.Parallel()

	if _, ok := Resolve(nil, nil); ok {
		t.Fatalf("expected no decision without rules")
	}
	if _, ok := Resolve(urlRule("unknown"), titleRule("")); ok {
		t.Fatalf("expected no decision when both rules are unknown")
	}
}
