package reconcile

import (
	"sort"

	"github.com/AJMedia-landers/ads-console/internal/normalize"
)

// Rewrite renames one label variant to its group's canonical display label.
type Rewrite struct {
	From string
	To   string
}

// BuildRewritePlan groups the labels in use by category key and, for every
// group with more than one distinct literal, emits rewrites from each
// variant to the canonical label. The plan is a pure function of the usage
// snapshot: applying it and recomputing over the result yields an empty
// plan.
func BuildRewritePlan(usage map[string]int) []Rewrite {
	groups := make(map[string]map[string]int)
	for label, count := range usage {
		if normalize.IsUnknownCategory(label) {
			continue
		}
		key := normalize.CategoryKey(label)
		if key == "" {
			continue
		}
		variants := groups[key]
		if variants == nil {
			variants = make(map[string]int)
			groups[key] = variants
		}
		variants[label] += count
	}

	var plan []Rewrite
	for _, variants := range groups {
		if len(variants) < 2 {
			continue
		}
		canonical := normalize.CanonicalLabel(variants)
		for label := range variants {
			if label != canonical {
				plan = append(plan, Rewrite{From: label, To: canonical})
			}
		}
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].From < plan[j].From })
	return plan
}
