package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AJMedia-landers/ads-console/internal/globaltime"
)

// Executor runs one normalization pass. Job satisfies it; tests substitute
// stubs.
type Executor interface {
	Execute(ctx context.Context) (Stats, error)
}

// Runner owns the process-wide job slot. It is the only place allowed to
// transition the slot's state: a run is created on start, read by pollers,
// and replaced by the next start after a terminal state. Exactly one run may
// be in flight.
type Runner struct {
	mu      sync.Mutex
	exec    Executor
	logger  zerolog.Logger
	current *run
}

type run struct {
	id         string
	state      State
	stats      Stats
	err        string
	startedAt  time.Time
	finishedAt *time.Time
}

func NewRunner(exec Executor, logger zerolog.Logger) *Runner {
	return &Runner{exec: exec, logger: logger}
}

// Start begins a run unless one is already in flight, in which case the
// in-flight status is returned and started is false. Starting while running
// is a status read, never an error and never a second job.
//
// The run executes on a detached goroutine with a background context: the
// triggering request returns immediately and the job outlives it.
func (r *Runner) Start() (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.state == StateRunning {
		return r.snapshotLocked(), false
	}

	current := &run{
		id:        uuid.NewString(),
		state:     StateRunning,
		startedAt: globaltime.UTC(),
	}
	r.current = current

	r.logger.Info().Str("run_id", current.id).Msg("normalization run started")
	go r.execute(current)

	return r.snapshotLocked(), true
}

// Status returns the current slot snapshot; idle when no run has happened.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Runner) execute(current *run) {
	stats, err := r.exec.Execute(context.Background())

	finished := globaltime.UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	current.finishedAt = &finished
	if err != nil {
		// Partial counts from a failed run are discarded; only the error
		// text survives for the poller.
		current.state = StateFailed
		current.err = err.Error()
		current.stats = Stats{}
		r.logger.Error().Err(err).Str("run_id", current.id).Msg("normalization run failed")
		return
	}

	current.state = StateCompleted
	current.stats = stats
	r.logger.Info().Str("run_id", current.id).Msg("normalization run completed")
}

func (r *Runner) snapshotLocked() Status {
	if r.current == nil {
		return Status{State: StateIdle}
	}

	startedAt := r.current.startedAt
	return Status{
		RunID:      r.current.id,
		State:      r.current.state,
		Stats:      r.current.stats,
		Error:      r.current.err,
		StartedAt:  &startedAt,
		FinishedAt: r.current.finishedAt,
	}
}
