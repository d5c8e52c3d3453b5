// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import "time"

// ThreadID is the kernel task id of a running thread. It is only meaningful
// while that thread is alive.
type ThreadID int32

// NoThread is the zero identity; no live thread ever has it.
const NoThread ThreadID = 0

// Valid reports whether id can name a live thread.
func (id ThreadID) Valid() bool { return id > 0 }

// CarrierState enumerates the lifecycle of the timer carrier thread.
type CarrierState int32

const (
	CarrierStarting CarrierState = iota
	CarrierIdentityPublished
	CarrierAwaiting
	CarrierStopped
)

func (s CarrierState) String() string {
	switch s {
	case CarrierStarting:
		return "starting"
	case CarrierIdentityPublished:
		return "identity-published"
	case CarrierAwaiting:
		return "awaiting-notifications"
	case CarrierStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// RunSummary is the final report of one stress run. It carries counts only.
type RunSummary struct {
	Workers        int           `json:"workers"`
	ThreadsPerCore int           `json:"threads_per_core"`
	ReservedCPU    int           `json:"reserved_cpu"`
	Interval       time.Duration `json:"interval_ns"`
	Priority       int           `json:"priority"`
	CarrierTID     ThreadID      `json:"carrier_tid"`
	Notifications  uint64        `json:"notifications"`
	Overruns       uint64        `json:"overruns"`
	Increments     []uint64      `json:"worker_increments"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	Err            string        `json:"error,omitempty"`
}
