package reconcile

import (
	"reflect"
	"testing"
)

func TestBuildRewritePlan(t *testing.T) {
	t.Parallel()

	usage := map[string]int{
		"Health & Beauty":   10,
		"health and beauty": 3,
		"Health And Beauty": 1,
		"Finance":           7,
		"":                  4,
		"unknown":           2,
		"Unknown":           1,
	}

	got := BuildRewritePlan(usage)
	want := []Rewrite{
		{From: "Health And Beauty", To: "Health & Beauty"},
		{From: "health and beauty", To: "Health & Beauty"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("plan = %v, want %v", got, want)
	}
}

func TestBuildRewritePlanTieBreak(t *testing.T) {
	t.Parallel()

	// Equal frequency resolves to the byte-wise smallest label.
	got := BuildRewritePlan(map[string]int{
		"Home & Garden":   5,
		"HOME AND GARDEN": 5,
	})
	want := []Rewrite{{From: "Home & Garden", To: "HOME AND GARDEN"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("plan = %v, want %v", got, want)
	}
}

func TestBuildRewritePlanSingletonGroups(t *testing.T) {
	t.Parallel()

	got := BuildRewritePlan(map[string]int{
		"Finance": 3,
		"Travel":  8,
	})
	if len(got) != 0 {
		t.Fatalf("plan = %v, want empty", got)
	}
}

func TestBuildRewritePlanConverges(t *testing.T) {
	t.Parallel()

	usage := map[string]int{
		"Health & Beauty":   2,
		"health and beauty": 9,
		"Sports  Betting":   1,
		"sports betting":    6,
		"Finance":           4,
	}

	plan := BuildRewritePlan(usage)
	if len(plan) == 0 {
		t.Fatal("expected a non-empty first plan")
	}

	// Apply the plan to the snapshot and recompute: the second plan must be
	// empty.
	next := make(map[string]int)
	rewritten := make(map[string]string, len(plan))
	for _, rw := range plan {
		rewritten[rw.From] = rw.To
	}
	for label, count := range usage {
		if to, ok := rewritten[label]; ok {
			label = to
		}
		next[label] += count
	}

	if again := BuildRewritePlan(next); len(again) != 0 {
		t.Fatalf("plan after applying plan = %v, want empty", again)
	}
}
