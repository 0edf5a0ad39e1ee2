package normalize

import "testing"

func TestCleanURL(t *testing.T) {
	t.Parallel()

	if got := CleanURL("https://www.sportsbet.com.au/promo?ref=1"); got != "https://sportsbet.com.au/promo" {
		t.Fatalf("unexpected cleaned URL: %q", got)
	}
	if got := CleanURL("https://sportsbet.com.au/promo"); got != "https://sportsbet.com.au/promo" {
		t.Fatalf("unexpected cleaned URL: %q", got)
	}
	if got := CleanURL("HTTP://WWW.Example.COM/Path/"); got != "http://example.com/Path" {
		t.Fatalf("expected lowercase host with trailing slash stripped, got %q", got)
	}
	if got := CleanURL("https://example.com/"); got != "https://example.com/" {
		t.Fatalf("single-character path must keep its slash, got %q", got)
	}
	if got := CleanURL("https://example.com/a#section"); got != "https://example.com/a" {
		t.Fatalf("fragment must be dropped, got %q", got)
	}
	if got := CleanURL("https://example.com"); got != "https://example.com/" {
		t.Fatalf("host-only URL must key with the root slash, got %q", got)
	}
	if got := CleanURL("https://example.com?utm=1"); got != "https://example.com/" {
		t.Fatalf("host-only URL with query must key with the root slash, got %q", got)
	}
	if got := CleanURL("https://www.example.com"); got != CleanURL("https://example.com/") {
		t.Fatalf("one landing page must have one identity key, got %q vs %q",
			CleanURL("https://www.example.com"), CleanURL("https://example.com/"))
	}
	if got := CleanURL("not a url"); got != "not a url" {
		t.Fatalf("malformed input must pass through unchanged, got %q", got)
	}
}

func TestCleanURLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://www.sportsbet.com.au/promo?ref=1",
		"https://example.com",
		"http://WWW.Shop.example/deals/",
		"https://example.com:8443/a/b?x=1&y=2",
		"example.com/no-scheme",
		"://broken",
		"",
	}
	for _, input := range inputs {
		once := CleanURL(input)
		if twice := CleanURL(once); twice != once {
			t.Fatalf("CleanURL not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	if got := BaseURL("https://sportsbet.com.au/promo"); got != "sportsbet.com.au/promo" {
		t.Fatalf("unexpected base: %q", got)
	}
	if got := BaseURL("http://www.example.com/a"); got != "example.com/a" {
		t.Fatalf("unexpected base: %q", got)
	}
	if got := BaseURL("example.com/a"); got != "example.com/a" {
		t.Fatalf("schemeless input must pass through, got %q", got)
	}
}

func TestCategoryKey(t *testing.T) {
	t.Parallel()

	variants := []string{"Health & Beauty", "health & beauty", "Health&Beauty", "health  and   beauty"}
	for _, variant := range variants {
		if got := CategoryKey(variant); got != "health and beauty" {
			t.Fatalf("CategoryKey(%q) = %q, want %q", variant, got, "health and beauty")
		}
	}

	if got := CategoryKey("  Gambling  "); got != "gambling" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestCanonicalLabel(t *testing.T) {
	t.Parallel()

	got := CanonicalLabel(map[string]int{
		"Health & Beauty": 200,
		"health & beauty": 50,
		"Health&Beauty":   10,
	})
	if got != "Health & Beauty" {
		t.Fatalf("expected most frequent literal, got %q", got)
	}

	// Tie-break is byte order so repeated runs agree.
	got = CanonicalLabel(map[string]int{"b": 3, "A": 3, "c": 3})
	if got != "A" {
		t.Fatalf("expected lexicographic tie-break, got %q", got)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	if got := Title("  Acme   Summer\tSale "); got != "Acme Summer Sale" {
		t.Fatalf("unexpected normalized title: %q", got)
	}
}

func TestIsUnknownCategory(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"", "  ", "unknown", "UNKNOWN", " Unknown "} {
		if !IsUnknownCategory(label) {
			t.Fatalf("expected %q to be unknown", label)
		}
	}
	if IsUnknownCategory("Gambling") {
		t.Fatalf("expected known category")
	}
}
