package mapping

import (
	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/normalize"
)

// Decision is the category outcome the resolver picked for one ad.
type Decision struct {
	Category string
	Type     string
}

// Resolve decides which rule categorizes an ad. A URL rule with a known
// category always wins; a title rule only applies when no usable URL rule
// does. When neither rule carries a known category the ad is left unchanged
// and the second return is false.
//
// Both the synchronous cascades and the normalization job's bulk pass route
// their decisions through this table so the two call sites cannot diverge.
func Resolve(urlRule *db.URLMappingItem, titleRule *db.TitleMappingItem) (Decision, bool) {
	if urlRule != nil && !normalize.IsUnknownCategory(urlRule.Category) {
		return Decision{Category: urlRule.Category, Type: db.TypeURLMapping}, true
	}
	if titleRule != nil && !normalize.IsUnknownCategory(titleRule.Category) {
		return Decision{Category: titleRule.Category, Type: db.TypeTitleMapping}, true
	}
	return Decision{}, false
}
