// Package api
// Author: momentics@gmail.com
//
// CPU affinity, thread pinning and scheduling-class contracts.

package api

// Affinity controls placement and scheduling class of the calling OS thread.
// Implementations must be invoked from a goroutine locked to its thread.
type Affinity interface {
	// Bind restricts the calling thread to the given logical CPUs.
	Bind(cpus []int) error
	// SetRealtimePriority moves the calling thread into SCHED_FIFO at prio.
	SetRealtimePriority(prio int) error
}
