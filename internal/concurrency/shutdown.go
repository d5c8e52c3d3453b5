// File: internal/concurrency/shutdown.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Write-once shutdown flag shared by spinning workers and the timer carrier.

package concurrency

import (
	"sync/atomic"

	"github.com/momentics/stress-lb/api"
)

var _ api.ShutdownObserver = (*ShutdownFlag)(nil)

// ShutdownFlag transitions false→true exactly once and never back.
// Loads and the store are sequentially consistent, which subsumes the
// acquire/release pairing readers on other cores rely on.
type ShutdownFlag struct {
	set atomic.Bool
}

// NewShutdownFlag returns a cleared flag.
func NewShutdownFlag() *ShutdownFlag {
	return &ShutdownFlag{}
}

// Set raises the flag. It reports true only for the call that performed the
// transition; later calls are no-ops.
func (f *ShutdownFlag) Set() bool {
	return f.set.CompareAndSwap(false, true)
}

// IsSet reports whether shutdown has been requested.
func (f *ShutdownFlag) IsSet() bool {
	return f.set.Load()
}
