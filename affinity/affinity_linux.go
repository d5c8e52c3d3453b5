//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.

package affinity

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

// cpuSetSize mirrors glibc's CPU_SETSIZE, the capacity of unix.CPUSet.
const cpuSetSize = 1024

// bindPlatform applies the mask to the calling thread (pid 0) and reads it
// back; the kernel silently drops offline CPUs, which counts as a failure.
func bindPlatform(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		set.Set(c)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return api.OSError(api.ErrCodeAffinity, "sched_setaffinity", err).
			WithContext("cpus", cpus)
	}

	var verify unix.CPUSet
	if err := unix.SchedGetaffinity(0, &verify); err != nil {
		return api.OSError(api.ErrCodeAffinity, "sched_getaffinity", err).
			WithContext("cpus", cpus)
	}
	if verify.Count() != set.Count() {
		return api.NewError(api.ErrCodeAffinity, "affinity: mask not honored").
			WithContext("cpus", cpus).
			WithContext("effective", verify.Count())
	}
	for _, c := range cpus {
		if !verify.IsSet(c) {
			return api.NewError(api.ErrCodeAffinity, "affinity: mask not honored").
				WithContext("cpus", cpus).
				WithContext("missing", c)
		}
	}
	return nil
}

// Allowed returns the CPUs the calling thread may currently run on.
func Allowed() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, api.OSError(api.ErrCodeAffinity, "sched_getaffinity", err)
	}
	want := set.Count()
	out := make([]int, 0, want)
	for c := 0; c < cpuSetSize && len(out) < want; c++ {
		if set.IsSet(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
