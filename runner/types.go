// File: runner/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
	"github.com/momentics/stress-lb/internal/carrier"
	"github.com/momentics/stress-lb/internal/concurrency"
)

// Config holds all run parameters.
type Config struct {
	ThreadsPerCore int           // spin workers per non-reserved core
	Interval       time.Duration // timer period
	Duration       time.Duration // run length; 0 runs until cancelled
	Priority       int           // SCHED_FIFO priority of the carrier; 0 disables
	ReservedCPU    int           // core owned by the timer carrier
	Signal         unix.Signal   // expiry signal
}

// DefaultConfig returns the stock stress profile.
func DefaultConfig() *Config {
	return &Config{
		ThreadsPerCore: 3,
		Interval:       time.Millisecond,
		Duration:       0,
		Priority:       1,
		ReservedCPU:    0,
		Signal:         unix.SIGALRM,
	}
}

// Runner orchestrates one stress run: spin workers, the timer carrier and
// the ordered teardown of both.
type Runner struct {
	cfg      *Config
	aff      api.Affinity
	control  api.Control
	log      *zap.SugaredLogger
	cores    int
	carrierO []carrier.Option

	stop     *concurrency.ShutdownFlag
	stopCh   chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	running bool
}
