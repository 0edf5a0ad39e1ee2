package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AJMedia-landers/ads-console/internal/globaltime"
)

type stubExecutor struct {
	mu      sync.Mutex
	release chan struct{}
	stats   Stats
	err     error
	calls   int
}

func (s *stubExecutor) Execute(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		<-release
	}
	return s.stats, s.err
}

func (s *stubExecutor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitForTerminal(t *testing.T, r *Runner) Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status := r.Status()
		if status.State == StateCompleted || status.State == StateFailed {
			return status
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("run never reached a terminal state, last status %q", r.Status().State)
	return Status{}
}

func TestRunnerIdleBeforeFirstRun(t *testing.T) {
	t.Parallel()

	r := NewRunner(&stubExecutor{}, zerolog.Nop())
	status := r.Status()
	if status.State != StateIdle {
		t.Fatalf("state = %q, want %q", status.State, StateIdle)
	}
	if status.RunID != "" {
		t.Fatalf("run id = %q, want empty", status.RunID)
	}
}

func TestRunnerSingleFlight(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{release: make(chan struct{})}
	r := NewRunner(exec, zerolog.Nop())

	first, started := r.Start()
	if !started {
		t.Fatal("first Start did not begin a run")
	}
	if first.State != StateRunning {
		t.Fatalf("state = %q, want %q", first.State, StateRunning)
	}

	second, started := r.Start()
	if started {
		t.Fatal("second Start began a run while one was in flight")
	}
	if second.RunID != first.RunID {
		t.Fatalf("second Start returned run %q, want in-flight run %q", second.RunID, first.RunID)
	}

	close(exec.release)
	waitForTerminal(t, r)

	if got := exec.callCount(); got != 1 {
		t.Fatalf("executor ran %d times, want 1", got)
	}
}

func TestRunnerCompletedRunKeepsStats(t *testing.T) {
	t.Parallel()

	stats := Stats{
		Deduplicated:    DedupStats{URLMappings: 3, Ads: 12, TitleMappings: 2},
		Backcategorised: BackfillStats{AdsFromURLMappings: 7},
	}
	r := NewRunner(&stubExecutor{stats: stats}, zerolog.Nop())

	if _, started := r.Start(); !started {
		t.Fatal("Start did not begin a run")
	}
	status := waitForTerminal(t, r)

	if status.State != StateCompleted {
		t.Fatalf("state = %q, want %q", status.State, StateCompleted)
	}
	if status.Stats != stats {
		t.Fatalf("stats = %+v, want %+v", status.Stats, stats)
	}
	if status.Error != "" {
		t.Fatalf("error = %q, want empty", status.Error)
	}
	if status.FinishedAt == nil {
		t.Fatal("finished_at not set on completed run")
	}
}

func TestRunnerFailedRunDiscardsStats(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{
		stats: Stats{Deduplicated: DedupStats{Ads: 5}},
		err:   errors.New("dedup phase: tx failed"),
	}
	r := NewRunner(exec, zerolog.Nop())

	if _, started := r.Start(); !started {
		t.Fatal("Start did not begin a run")
	}
	status := waitForTerminal(t, r)

	if status.State != StateFailed {
		t.Fatalf("state = %q, want %q", status.State, StateFailed)
	}
	if status.Error != "dedup phase: tx failed" {
		t.Fatalf("error = %q, want executor error", status.Error)
	}
	if status.Stats != (Stats{}) {
		t.Fatalf("stats = %+v, want zeroed", status.Stats)
	}
}

// No t.Parallel: this test pins the package clock, and parallel tests only
// start once the sequential ones have finished.
func TestRunnerRunTimestamps(t *testing.T) {
	fixed := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(fixed)
	defer globaltime.ResetTime()

	r := NewRunner(&stubExecutor{}, zerolog.Nop())
	status, started := r.Start()
	if !started {
		t.Fatal("Start did not begin a run")
	}
	if status.StartedAt == nil || !status.StartedAt.Equal(fixed) {
		t.Fatalf("started_at = %v, want %v", status.StartedAt, fixed)
	}

	status = waitForTerminal(t, r)
	if status.FinishedAt == nil || !status.FinishedAt.Equal(fixed) {
		t.Fatalf("finished_at = %v, want %v", status.FinishedAt, fixed)
	}
}

func TestRunnerTerminalRunIsReplaced(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{}
	r := NewRunner(exec, zerolog.Nop())

	first, _ := r.Start()
	waitForTerminal(t, r)

	second, started := r.Start()
	if !started {
		t.Fatal("Start after a terminal run did not begin a new run")
	}
	if second.RunID == first.RunID {
		t.Fatalf("new run reused id %q", first.RunID)
	}
	waitForTerminal(t, r)

	if got := exec.callCount(); got != 2 {
		t.Fatalf("executor ran %d times, want 2", got)
	}
}
