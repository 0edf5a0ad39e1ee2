// Package normalize holds the pure string canonicalizers shared by the
// mapping store, the cascade updater and the normalization job.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	schemePrefixRe = regexp.MustCompile(`^https?://(www\.)?`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// CleanURL canonicalizes a raw landing page URL into the identity key used
// by URL mapping rules: lowercased host without a leading "www.", no query
// string or fragment, no trailing slash on a multi-character path, and the
// root slash on a host-only URL. Malformed input is returned unchanged,
// which keeps the function idempotent for every input.
func CleanURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return raw
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	// A host-only URL keys as "host/", never "host": without the slash the
	// same landing page would carry two distinct rule identities.
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	return parsed.Scheme + "://" + host + path
}

// BaseURL strips the scheme and an optional "www." from a cleaned URL. The
// result is the loose substring key matched against raw landing pages, which
// still carry tracking parameters a strict equality match would miss.
func BaseURL(cleaned string) string {
	return schemePrefixRe.ReplaceAllString(cleaned, "")
}

// CategoryKey maps a free-text category label to the case, whitespace and
// "&"/"and" insensitive key used to group near-duplicate labels.
func CategoryKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.ReplaceAll(key, "&", " and ")
	key = whitespaceRe.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// CanonicalLabel picks the display label for a group of variants sharing one
// category key: the most frequent literal, ties broken by byte order so the
// choice is deterministic across runs.
func CanonicalLabel(variants map[string]int) string {
	best := ""
	bestCount := -1
	for label, count := range variants {
		if count > bestCount || (count == bestCount && label < best) {
			best = label
			bestCount = count
		}
	}
	return best
}

// Title trims a title and collapses internal whitespace runs to single
// spaces. Title mapping identity is this form compared case-insensitively.
func Title(raw string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// IsUnknownCategory reports whether a label counts as "no category yet":
// empty, whitespace, or the literal unknown placeholder.
func IsUnknownCategory(label string) bool {
	trimmed := strings.TrimSpace(label)
	return trimmed == "" || strings.EqualFold(trimmed, "unknown")
}
