// File: internal/timer/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-directed periodic timer with exclusive ownership of the kernel handle.

package timer

import (
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

// DefaultSignal is the signal reserved for timer expiry.
const DefaultSignal = unix.SIGALRM

// noTimer marks a Timer that holds no kernel resource. Kernel timer ids start
// at 0, so 0 cannot serve as the sentinel.
const noTimer int32 = -1

// Ops is the system-call surface a Timer drives.
type Ops interface {
	// Create makes a CLOCK_MONOTONIC timer that signals sig to thread target.
	Create(target api.ThreadID, sig unix.Signal) (int32, error)
	// Arm starts id with equal initial delay and period.
	Arm(id int32, interval time.Duration) error
	// Delete disarms and releases id.
	Delete(id int32) error
}

var _ api.ThreadTimer = (*Timer)(nil)

// Timer owns one armed kernel timer whose expirations are delivered only to
// its target thread.
type Timer struct {
	ops      Ops
	id       atomic.Int32
	target   api.ThreadID
	interval time.Duration
	sig      unix.Signal
}

// Create builds a timer on the host kernel using DefaultSignal.
func Create(target api.ThreadID, interval time.Duration) (*Timer, error) {
	return New(SystemOps(), target, interval, DefaultSignal)
}

// New creates and arms a timer through ops. If arming fails the created
// timer is deleted before the error is returned, so every successful Create
// is matched by exactly one Delete over the Timer's lifetime.
func New(ops Ops, target api.ThreadID, interval time.Duration, sig unix.Signal) (*Timer, error) {
	if !target.Valid() {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "timer: invalid target thread").
			WithContext("tid", target)
	}
	if interval <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "timer: interval must be positive").
			WithContext("interval", interval)
	}

	id, err := ops.Create(target, sig)
	if err != nil {
		return nil, api.OSError(api.ErrCodeResourceCreation, "timer_create", err).
			WithContext("tid", target)
	}
	t := &Timer{
		ops:      ops,
		target:   target,
		interval: interval,
		sig:      sig,
	}
	t.id.Store(id)

	if err := ops.Arm(id, interval); err != nil {
		armErr := api.OSError(api.ErrCodeResourceCreation, "timer_settime", err).
			WithContext("tid", target).
			WithContext("interval", interval)
		return nil, multierr.Append(armErr, t.Close())
	}
	return t, nil
}

// Factory adapts New to api.TimerFactory for a fixed ops and signal.
func Factory(ops Ops, sig unix.Signal) api.TimerFactory {
	return func(target api.ThreadID, interval time.Duration) (api.ThreadTimer, error) {
		t, err := New(ops, target, interval, sig)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Target returns the thread receiving the expirations.
func (t *Timer) Target() api.ThreadID { return t.target }

// Interval returns the period, which is also the initial delay.
func (t *Timer) Interval() time.Duration { return t.interval }

// Signal returns the signal delivered on expiry.
func (t *Timer) Signal() unix.Signal { return t.sig }

// Armed reports whether the timer still holds its kernel resource.
func (t *Timer) Armed() bool { return t.id.Load() != noTimer }

// Close disarms and deletes the kernel timer. Only the first call reaches
// the kernel; later and concurrent calls return nil.
func (t *Timer) Close() error {
	id := t.id.Swap(noTimer)
	if id == noTimer {
		return nil
	}
	if err := t.ops.Delete(id); err != nil {
		return api.OSError(api.ErrCodeInternal, "timer_delete", err).
			WithContext("tid", t.target)
	}
	return nil
}
