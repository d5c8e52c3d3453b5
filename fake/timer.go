// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/stress-lb/api"
)

// Timer is an armed-until-closed stand-in for a kernel timer. Only the first
// Close counts as a delete.
type Timer struct {
	target   api.ThreadID
	interval time.Duration
	armed    atomic.Bool
	deletes  atomic.Int32
}

var _ api.ThreadTimer = (*Timer)(nil)

func (t *Timer) Target() api.ThreadID    { return t.target }
func (t *Timer) Interval() time.Duration { return t.interval }

func (t *Timer) Close() error {
	if t.armed.CompareAndSwap(true, false) {
		t.deletes.Add(1)
	}
	return nil
}

// Deletes returns how many times the timer was released.
func (t *Timer) Deletes() int32 { return t.deletes.Load() }

// Timers hands out Timers and remembers them.
type Timers struct {
	mu  sync.Mutex
	all []*Timer
}

// Factory satisfies api.TimerFactory.
func (ts *Timers) Factory(target api.ThreadID, interval time.Duration) (api.ThreadTimer, error) {
	t := &Timer{target: target, interval: interval}
	t.armed.Store(true)
	ts.mu.Lock()
	ts.all = append(ts.all, t)
	ts.mu.Unlock()
	return t, nil
}

// Created returns every timer built so far.
func (ts *Timers) Created() []*Timer {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]*Timer(nil), ts.all...)
}
