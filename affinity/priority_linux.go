//go:build linux
// +build linux

// File: affinity/priority_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux real-time scheduling class via sched_setattr(2).

package affinity

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

func setPriorityPlatform(prio int) error {
	attr := &unix.SchedAttr{
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(prio),
	}
	if err := unix.SchedSetAttr(0, attr, 0); err != nil {
		return api.OSError(api.ErrCodePriority, "sched_setattr", err).
			WithContext("priority", prio)
	}
	return nil
}
