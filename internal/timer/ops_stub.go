//go:build !linux
// +build !linux

// File: internal/timer/ops_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-directed timers need SIGEV_THREAD_ID, which only Linux provides.

package timer

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

type systemOps struct{}

// SystemOps returns an Ops that always fails with api.ErrNotSupported.
func SystemOps() Ops { return systemOps{} }

func (systemOps) Create(api.ThreadID, unix.Signal) (int32, error) {
	return noTimer, api.ErrNotSupported
}

func (systemOps) Arm(int32, time.Duration) error { return api.ErrNotSupported }

func (systemOps) Delete(int32) error { return api.ErrNotSupported }
