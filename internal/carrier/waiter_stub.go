//go:build !linux
// +build !linux

// File: internal/carrier/waiter_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package carrier

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

// OpenSignalfd is not available without signalfd(2).
func OpenSignalfd(sig unix.Signal) (Waiter, error) {
	return nil, api.OSError(api.ErrCodeSignal, "signalfd", api.ErrNotSupported).
		WithContext("signal", sig.String())
}

func currentThread() api.ThreadID { return api.NoThread }
