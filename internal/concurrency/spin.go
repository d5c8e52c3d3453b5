// File: internal/concurrency/spin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SpinWorker burns one OS thread pinned to the load core set.

package concurrency

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/stress-lb/api"
)

// spinCounter is padded so neighbouring workers never share a cache line.
type spinCounter struct {
	_ cpu.CacheLinePad
	n atomic.Uint64
	_ cpu.CacheLinePad
}

// SpinWorker is a busy loop bound to a set of CPUs. It has no peers; the only
// coordination is the shared shutdown flag.
type SpinWorker struct {
	id      int
	cpus    []int
	aff     api.Affinity
	stop    api.ShutdownObserver
	counter spinCounter
}

// NewSpinWorker prepares a worker; nothing runs until Run.
func NewSpinWorker(id int, cpus []int, aff api.Affinity, stop api.ShutdownObserver) *SpinWorker {
	return &SpinWorker{
		id:   id,
		cpus: cpus,
		aff:  aff,
		stop: stop,
	}
}

// ID returns the worker index within its pool.
func (w *SpinWorker) ID() int { return w.id }

// Increments returns how many loop iterations the worker has completed.
func (w *SpinWorker) Increments() uint64 { return w.counter.n.Load() }

// Run locks the calling goroutine to its thread, pins it, and spins until the
// shutdown flag is observed. The thread is never unlocked: it carries the
// narrowed affinity mask and is discarded by the runtime when Run returns.
func (w *SpinWorker) Run() error {
	runtime.LockOSThread()

	if err := w.aff.Bind(w.cpus); err != nil {
		return err
	}

	// Atomic load/store keep every iteration's memory access in the loop.
	// The increment precedes the flag check, so a worker always reports at
	// least one iteration.
	for {
		w.counter.n.Store(w.counter.n.Load() + 1)
		if w.stop.IsSet() {
			return nil
		}
	}
}
