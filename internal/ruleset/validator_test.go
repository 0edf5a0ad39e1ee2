package ruleset

import (
	"strings"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	raw := []byte(`{
		"version":"v1",
		"rules":[
			{"kind":"url","match":"sportsbet.io/casino","category":"Gambling"},
			{"kind":"title","match":"Zdraví a krása","category":"Health & Beauty","translated_title":"Health and beauty"}
		]
	}`)

	rs, err := Parse(raw)
	if err != nil {
		t.Fatalf("expected ruleset to be valid, got error: %v", err)
	}

	if len(rs.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rs.Rules))
	}
	if rs.Rules[0].Kind != KindURL {
		t.Fatalf("expected first rule kind=url, got %q", rs.Rules[0].Kind)
	}
	if rs.Rules[1].TranslatedTitle != "Health and beauty" {
		t.Fatalf("expected translated title, got %q", rs.Rules[1].TranslatedTitle)
	}
}

func TestParse_UnknownVersion(t *testing.T) {
	raw := []byte(`{
		"version":"v2",
		"rules":[{"kind":"url","match":"example.com","category":"Finance"}]
	}`)

	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected validation to fail for unknown version")
	}
}

func TestParse_BadKind(t *testing.T) {
	raw := []byte(`{
		"version":"v1",
		"rules":[{"kind":"domain","match":"example.com","category":"Finance"}]
	}`)

	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected validation to fail for unknown rule kind")
	}
}

func TestParse_DuplicateMatch(t *testing.T) {
	raw := []byte(`{
		"version":"v1",
		"rules":[
			{"kind":"url","match":"Example.com/shop","category":"Shopping"},
			{"kind":"url","match":"example.com/shop","category":"Retail"}
		]
	}`)

	_, err := Parse(raw)
	if err == nil {
		t.Fatalf("expected validation to fail for duplicate match")
	}
	if !strings.Contains(err.Error(), "duplicates") {
		t.Fatalf("expected duplicate error, got: %v", err)
	}
}

func TestParse_TranslatedTitleOnURLRule(t *testing.T) {
	raw := []byte(`{
		"version":"v1",
		"rules":[{"kind":"url","match":"example.com","category":"Finance","translated_title":"nope"}]
	}`)

	_, err := Parse(raw)
	if err == nil {
		t.Fatalf("expected validation to fail for translated_title on url rule")
	}
	if !strings.Contains(err.Error(), "translated_title") {
		t.Fatalf("expected translated_title error, got: %v", err)
	}
}

func TestParse_TrailingContent(t *testing.T) {
	raw := []byte(`{"version":"v1","rules":[{"kind":"url","match":"a.com","category":"X"}]} garbage`)

	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected validation to fail for trailing content")
	}
}
