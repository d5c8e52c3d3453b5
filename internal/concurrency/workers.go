// File: internal/concurrency/workers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker sizing for the spin pool.

package concurrency

import "github.com/momentics/stress-lb/api"

// WorkerCount returns the number of spin workers for a host with coreCount
// logical CPUs, one of which is reserved for the timer carrier.
func WorkerCount(coreCount, threadsPerCore int) (int, error) {
	if coreCount < 1 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "core count must be positive").
			WithContext("cores", coreCount)
	}
	if threadsPerCore < 0 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "threads per core must not be negative").
			WithContext("threads_per_core", threadsPerCore)
	}
	return (coreCount - 1) * threadsPerCore, nil
}
