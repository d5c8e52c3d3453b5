//go:build linux
// +build linux

// File: internal/timer/ops_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// POSIX timer system calls. x/sys/unix exposes the syscall numbers but no
// wrappers, so the calls are issued directly.

package timer

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

const (
	sigevSize     = 64 // sizeof(struct sigevent) in the kernel ABI
	sigevThreadID = 4  // SIGEV_THREAD_ID
)

// sigevent mirrors the kernel's struct sigevent for SIGEV_THREAD_ID.
type sigevent struct {
	value  uintptr // union sigval
	signo  int32
	notify int32
	tid    int32
	_      [sigevSize - 3*4 - unsafe.Sizeof(uintptr(0))]byte
}

type systemOps struct{}

// SystemOps returns the host kernel implementation of Ops.
func SystemOps() Ops { return systemOps{} }

func (systemOps) Create(target api.ThreadID, sig unix.Signal) (int32, error) {
	ev := sigevent{
		signo:  int32(sig),
		notify: sigevThreadID,
		tid:    int32(target),
	}
	id := noTimer
	_, _, errno := unix.Syscall(unix.SYS_TIMER_CREATE,
		uintptr(unix.CLOCK_MONOTONIC),
		uintptr(unsafe.Pointer(&ev)),
		uintptr(unsafe.Pointer(&id)))
	if errno != 0 {
		return noTimer, errno
	}
	return id, nil
}

func (systemOps) Arm(id int32, interval time.Duration) error {
	ts := unix.NsecToTimespec(interval.Nanoseconds())
	spec := unix.ItimerSpec{Interval: ts, Value: ts}
	_, _, errno := unix.Syscall6(unix.SYS_TIMER_SETTIME,
		uintptr(id), 0,
		uintptr(unsafe.Pointer(&spec)), 0,
		0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func (systemOps) Delete(id int32) error {
	_, _, errno := unix.Syscall(unix.SYS_TIMER_DELETE, uintptr(id), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
