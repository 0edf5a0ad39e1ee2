package mapping

import "errors"

// CategoryUninterested is the sentinel category a URL rule takes when an
// operator marks its ads as not worth triaging. Matching ads are deleted,
// and the rule keeps future ingests of the same landing page out of view.
const CategoryUninterested = "Manual Uninterested"

var (
	// ErrDuplicateRule is returned when creating a rule whose identity key
	// (cleaned URL, or normalized title) already has a rule. Creation never
	// silently overwrites.
	ErrDuplicateRule = errors.New("a rule already exists for this key")

	// ErrRuleNotFound is returned when updating or deleting a rule id that
	// does not exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrMergeTargetInSources is returned when a category merge names its
	// target as one of the source labels.
	ErrMergeTargetInSources = errors.New("merge target cannot be one of the source categories")
)
