// Package api
// Author: momentics
//
// Thread-directed periodic timer contract.

package api

import "time"

// ThreadTimer is a periodic timer whose expirations are delivered to one
// thread only. Close releases the OS resource and is safe to call repeatedly.
type ThreadTimer interface {
	Target() ThreadID
	Interval() time.Duration
	Close() error
}

// TimerFactory constructs a ThreadTimer bound to target.
type TimerFactory func(target ThreadID, interval time.Duration) (ThreadTimer, error)
