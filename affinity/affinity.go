// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity and real-time scheduling class.
// Platform-specific implementations are located in separate files
// (affinity_linux.go, priority_linux.go, ...) guarded by build tags.

package affinity

import (
	"github.com/momentics/stress-lb/api"
)

// Bounds of the SCHED_FIFO static priority range on Linux.
const (
	MinRealtimePriority = 1
	MaxRealtimePriority = 99
)

// Bind pins the calling OS thread to the given logical CPUs. The caller must
// hold runtime.LockOSThread, otherwise the binding stays with a thread the
// goroutine may leave.
func Bind(cpus ...int) error {
	if len(cpus) == 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "affinity: empty cpu set")
	}
	for _, c := range cpus {
		if c < 0 {
			return api.NewError(api.ErrCodeInvalidArgument, "affinity: negative cpu id").
				WithContext("cpu", c)
		}
	}
	return bindPlatform(cpus)
}

// SetRealtimePriority moves the calling OS thread into SCHED_FIFO at prio.
func SetRealtimePriority(prio int) error {
	if prio < MinRealtimePriority || prio > MaxRealtimePriority {
		return api.NewError(api.ErrCodeInvalidArgument, "affinity: real-time priority out of range").
			WithContext("priority", prio)
	}
	return setPriorityPlatform(prio)
}

// Range returns the CPU ids in [from, to).
func Range(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, 0, to-from)
	for c := from; c < to; c++ {
		out = append(out, c)
	}
	return out
}

// Without returns the CPU ids in [0, coreCount) except reserved.
func Without(coreCount, reserved int) []int {
	out := make([]int, 0, coreCount)
	for c := 0; c < coreCount; c++ {
		if c != reserved {
			out = append(out, c)
		}
	}
	return out
}
