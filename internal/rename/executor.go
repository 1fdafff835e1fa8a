// Package rename executes planned renames in two barrier-separated phases.
//
// Phase one moves every source to its staging name. Only after every phase-one
// job in the whole batch has finished does phase two move staging names to
// destinations. Staging names never equal a source or destination, so phase
// one cannot clobber anything, and by the time phase two runs every source has
// vacated the name a destination may reuse.
package rename

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"batch-renamer/internal/plan"
)

var (
	// ErrStagingExists means a staging name is already taken on disk, most
	// likely by a previous interrupted run.
	ErrStagingExists = errors.New("staging name already exists")

	// ErrDestinationExists means a destination is still occupied when its file
	// is finalized, typically because the occupant failed to stage.
	ErrDestinationExists = errors.New("destination already exists")
)

// Phase identifies which half of the protocol a rename belongs to.
type Phase string

const (
	PhaseStage    Phase = "stage"
	PhaseFinalize Phase = "finalize"
)

// Pool runs jobs concurrently. Wait must return only once every job submitted
// before it has completed.
type Pool interface {
	Submit(job func()) error
	Wait()
}

// Failure records a single rename that was abandoned.
type Failure struct {
	Phase Phase
	From  string
	To    string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s >> %s: %v", f.Phase, f.From, f.To, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result summarises a batch. Planned counts every plan handed in, whether or
// not it succeeded.
type Result struct {
	Planned   int
	Staged    int
	Finalized int
	Failures  []Failure
}

// Executor performs the staged rename of a batch.
type Executor struct {
	Fs   afero.Fs
	Pool Pool

	// DryRun narrates but never touches the filesystem.
	DryRun bool

	// Narration, when non-nil, receives one "from >> to" line per rename.
	Narration io.Writer

	Log zerolog.Logger
}

// batch is the mutable state of one Execute call shared by pool jobs.
type batch struct {
	staged    []bool // written once per index in phase one, read after the barrier
	nStaged   atomic.Int64
	nFinal    atomic.Int64
	mu        sync.Mutex
	failures  []Failure
	narrateMu sync.Mutex
}

// Execute runs both phases over renames and returns once every job has
// finished. Individual failures are logged and collected; they never stop the
// batch.
func (e *Executor) Execute(renames []plan.Rename) Result {
	b := &batch{staged: make([]bool, len(renames))}

	e.stage(b, renames)
	e.Pool.Wait()

	e.finalize(b, renames)
	e.Pool.Wait()

	return Result{
		Planned:   len(renames),
		Staged:    int(b.nStaged.Load()),
		Finalized: int(b.nFinal.Load()),
		Failures:  b.failures,
	}
}

func (e *Executor) stage(b *batch, renames []plan.Rename) {
	for i, r := range renames {
		e.submit(b, PhaseStage, r.Source, r.Staging, func() {
			if err := e.move(r.Source, r.Staging, ErrStagingExists); err != nil {
				e.fail(b, Failure{Phase: PhaseStage, From: r.Source, To: r.Staging, Err: err})
				return
			}
			b.staged[i] = true
			b.nStaged.Add(1)
		})
	}
}

func (e *Executor) finalize(b *batch, renames []plan.Rename) {
	for i, r := range renames {
		if !b.staged[i] {
			continue
		}
		e.submit(b, PhaseFinalize, r.Staging, r.Destination, func() {
			if err := e.move(r.Staging, r.Destination, ErrDestinationExists); err != nil {
				e.fail(b, Failure{Phase: PhaseFinalize, From: r.Staging, To: r.Destination, Err: err})
				return
			}
			b.nFinal.Add(1)
		})
	}
}

// submit queues one rename job. A pool that refuses work counts as a failure
// of that rename.
func (e *Executor) submit(b *batch, phase Phase, from, to string, job func()) {
	err := e.Pool.Submit(func() {
		e.narrate(b, from, to)
		job()
	})
	if err != nil {
		e.fail(b, Failure{Phase: phase, From: from, To: to, Err: err})
	}
}

func (e *Executor) narrate(b *batch, from, to string) {
	if e.Narration == nil {
		return
	}
	b.narrateMu.Lock()
	defer b.narrateMu.Unlock()
	_, _ = fmt.Fprintf(e.Narration, "%s >> %s\n", from, to)
}

// move renames from to to, refusing to replace an existing file at to.
func (e *Executor) move(from, to string, occupied error) error {
	if e.DryRun {
		return nil
	}

	if _, err := e.Fs.Stat(to); err == nil {
		return occupied
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", to, err)
	}

	return e.Fs.Rename(from, to)
}

func (e *Executor) fail(b *batch, f Failure) {
	e.Log.Error().
		Err(f.Err).
		Str("phase", string(f.Phase)).
		Str("from", f.From).
		Str("to", f.To).
		Msg("rename failed")

	b.mu.Lock()
	b.failures = append(b.failures, f)
	b.mu.Unlock()
}
