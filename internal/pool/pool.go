// Package pool provides a fixed-size goroutine pool for blocking filesystem
// work.
//
// Jobs are plain closures. Callers use Wait as a barrier: it returns once
// every job submitted so far has finished, after which more work may be
// submitted. Close stops intake, drains the queue and joins the workers.
package pool

import (
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidSize is returned by New when asked for fewer than one worker.
	ErrInvalidSize = errors.New("pool: size must be at least 1")

	// ErrClosed is returned by Submit after Close has been called.
	ErrClosed = errors.New("pool: closed")
)

// Pool runs submitted jobs on a fixed number of worker goroutines.
type Pool struct {
	jobs    chan func()
	pending sync.WaitGroup // submitted but not yet finished
	workers sync.WaitGroup // live worker goroutines

	mu     sync.RWMutex
	closed bool

	log zerolog.Logger
}

// DefaultSize returns the number of hardware execution contexts available to
// the process.
func DefaultSize() int {
	return runtime.GOMAXPROCS(0)
}

// New starts a pool with size workers.
func New(size int, log zerolog.Logger) (*Pool, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}

	p := &Pool{
		jobs: make(chan func(), size*4),
		log:  log,
	}

	p.workers.Add(size)
	for id := 0; id < size; id++ {
		go p.work(id)
	}

	return p, nil
}

func (p *Pool) work(id int) {
	defer p.workers.Done()

	for job := range p.jobs {
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job func()) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("job panicked")
		}
	}()

	job()
}

// Submit queues job to run on some worker, in no particular order relative to
// other jobs. It may block while the queue is full. Submit and Wait are meant
// to be called from a single coordinating goroutine.
func (p *Pool) Submit(job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	p.pending.Add(1)
	p.jobs <- job
	return nil
}

// Wait blocks until every job submitted before the call has completed.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Close stops accepting work and returns once all queued jobs have run and
// every worker has exited. Calling Close more than once is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.workers.Wait()
}
