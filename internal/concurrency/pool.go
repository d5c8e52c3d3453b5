// File: internal/concurrency/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerPool owns the spin workers and joins them in spawn order.

package concurrency

import (
	"fmt"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/momentics/stress-lb/api"
)

// workerHandle tracks one spawned worker until it is joined.
type workerHandle struct {
	w    *SpinWorker
	done chan struct{}
	err  error
}

// WorkerPool is an ordered collection of independently running spin workers.
// Only the owner spawns and joins; Failed may be watched from anywhere.
type WorkerPool struct {
	aff  api.Affinity
	stop api.ShutdownObserver
	log  *zap.SugaredLogger

	mu      sync.Mutex
	pending *queue.Queue // *workerHandle, spawn order
	all     []*SpinWorker

	failed   chan error
	failOnce sync.Once
}

// NewWorkerPool creates an empty pool. A nil logger disables logging.
func NewWorkerPool(aff api.Affinity, stop api.ShutdownObserver, log *zap.SugaredLogger) *WorkerPool {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WorkerPool{
		aff:     aff,
		stop:    stop,
		log:     log,
		pending: queue.New(),
		failed:  make(chan error, 1),
	}
}

// Spawn starts n workers, each bound to cpus.
func (p *WorkerPool) Spawn(n int, cpus []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < n; i++ {
		w := NewSpinWorker(len(p.all), cpus, p.aff, p.stop)
		h := &workerHandle{w: w, done: make(chan struct{})}
		p.all = append(p.all, w)
		p.pending.Add(h)
		go p.run(h)
	}
	p.log.Debugw("spawned spin workers", "count", n, "cpus", cpus)
}

// run executes one worker, converting a panic into a join error.
func (p *WorkerPool) run(h *workerHandle) {
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			h.err = api.NewError(api.ErrCodeJoin, "spin worker panicked").
				WithContext("worker", h.w.ID()).
				WithContext("panic", fmt.Sprint(r))
		}
		if h.err != nil {
			p.fail(h.err)
		}
	}()
	h.err = h.w.Run()
}

// fail records the first worker failure.
func (p *WorkerPool) fail(err error) {
	p.failOnce.Do(func() {
		p.failed <- err
	})
}

// Failed delivers the first worker failure, if any. It never closes.
func (p *WorkerPool) Failed() <-chan error {
	return p.failed
}

// Len returns the number of workers spawned so far.
func (p *WorkerPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

// Increments snapshots every worker's iteration count in spawn order.
func (p *WorkerPool) Increments() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint64, len(p.all))
	for i, w := range p.all {
		out[i] = w.Increments()
	}
	return out
}

// Join waits for every not yet joined worker in spawn order and returns the
// combined errors. Workers only return once the shutdown flag is set, so
// callers raise it first. No timeout guards the wait.
func (p *WorkerPool) Join() error {
	var errs error
	for {
		p.mu.Lock()
		if p.pending.Length() == 0 {
			p.mu.Unlock()
			return errs
		}
		h := p.pending.Remove().(*workerHandle)
		p.mu.Unlock()

		<-h.done
		if h.err != nil {
			p.log.Errorw("spin worker failed", "worker", h.w.ID(), "error", h.err)
			errs = multierr.Append(errs, h.err)
		}
	}
}
