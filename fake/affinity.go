// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the thread placement,
// timer and wake-up contracts without touching the kernel.

package fake

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

// Affinity records every placement request. Fail, when set, selects the
// requests refused with EPERM.
type Affinity struct {
	Fail func(cpus []int) bool

	mu       sync.Mutex
	binds    [][]int
	priority []int
}

var _ api.Affinity = (*Affinity)(nil)

// Bind records cpus and fails when Fail says so.
func (a *Affinity) Bind(cpus []int) error {
	a.mu.Lock()
	a.binds = append(a.binds, append([]int(nil), cpus...))
	a.mu.Unlock()
	if a.Fail != nil && a.Fail(cpus) {
		return api.OSError(api.ErrCodeAffinity, "sched_setaffinity", unix.EPERM)
	}
	return nil
}

// SetRealtimePriority records prio.
func (a *Affinity) SetRealtimePriority(prio int) error {
	a.mu.Lock()
	a.priority = append(a.priority, prio)
	a.mu.Unlock()
	return nil
}

// Count returns how many Bind calls asked for exactly cpus.
func (a *Affinity) Count(cpus ...int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, b := range a.binds {
		if equal(b, cpus) {
			n++
		}
	}
	return n
}

// Priorities returns the recorded priority requests.
func (a *Affinity) Priorities() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.priority...)
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
