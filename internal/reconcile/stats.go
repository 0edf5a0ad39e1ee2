package reconcile

import "time"

// State is the lifecycle of the normalization job slot.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// DedupStats counts rows rewritten per store by the category deduplication
// phase.
type DedupStats struct {
	URLMappings   int64 `json:"urlMappings"`
	Ads           int64 `json:"ads"`
	TitleMappings int64 `json:"titleMappings"`
}

// BackfillStats counts what the backcategorization phase fixed, split by
// which mapping table supplied the category.
type BackfillStats struct {
	URLMappingsFixed     int64 `json:"urlMappingsFixed"`
	TitleMappingsFixed   int64 `json:"titleMappingsFixed"`
	AdsFromURLMappings   int64 `json:"adsFromUrlMappings"`
	AdsFromTitleMappings int64 `json:"adsFromTitleMappings"`
}

// Stats is the full result of one normalization run.
type Stats struct {
	Deduplicated    DedupStats    `json:"deduplicated"`
	Backcategorised BackfillStats `json:"backcategorised"`
}

// Status is the pollable snapshot of the job slot.
type Status struct {
	RunID      string     `json:"run_id,omitempty"`
	State      State      `json:"status"`
	Stats      Stats      `json:"stats"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
