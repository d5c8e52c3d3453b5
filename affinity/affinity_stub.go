//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.
// Returns error to indicate unavailability.

package affinity

import "github.com/momentics/stress-lb/api"

func bindPlatform(cpus []int) error {
	return api.OSError(api.ErrCodeAffinity, "sched_setaffinity", api.ErrNotSupported).
		WithContext("cpus", cpus)
}

func setPriorityPlatform(prio int) error {
	return api.OSError(api.ErrCodePriority, "sched_setattr", api.ErrNotSupported).
		WithContext("priority", prio)
}

// Allowed is not available on this platform.
func Allowed() ([]int, error) {
	return nil, api.OSError(api.ErrCodeAffinity, "sched_getaffinity", api.ErrNotSupported)
}
