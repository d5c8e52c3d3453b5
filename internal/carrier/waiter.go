// File: internal/carrier/waiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package carrier

import "golang.org/x/sys/unix"

// Waiter blocks the calling thread until the next delivery of its signal.
// It is opened, used and closed on the same locked OS thread.
type Waiter interface {
	// Wait returns after one delivery. overrun is the number of additional
	// expirations the kernel folded into it.
	Wait() (overrun uint32, err error)
	Close() error
}

// WaiterOpener prepares the calling thread to receive sig through a Waiter.
type WaiterOpener func(sig unix.Signal) (Waiter, error)
