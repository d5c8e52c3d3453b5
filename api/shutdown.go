// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that can be asked to stop.
type GracefulShutdown interface {
	// Shutdown requests termination. It does not wait for completion.
	Shutdown() error
}

// ShutdownObserver is the read side of a shutdown flag.
type ShutdownObserver interface {
	// IsSet reports whether shutdown has been requested.
	IsSet() bool
}
