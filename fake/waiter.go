// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync/atomic"
	"time"
)

// TickWaiter wakes every Interval with no overruns, like a punctual timer.
type TickWaiter struct {
	Interval time.Duration
	closed   atomic.Int32
}

func (w *TickWaiter) Wait() (uint32, error) {
	time.Sleep(w.Interval)
	return 0, nil
}

func (w *TickWaiter) Close() error {
	w.closed.Add(1)
	return nil
}

// Closed returns how many times Close was called.
func (w *TickWaiter) Closed() int32 { return w.closed.Load() }
