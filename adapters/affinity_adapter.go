// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Affinity adapter implementing api.Affinity on top of the affinity package.

package adapters

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/stress-lb/affinity"
	"github.com/momentics/stress-lb/api"
)

// AffinityAdapter applies placement to the calling thread. It is shared by
// every worker and the carrier, so it keeps only atomic counters.
type AffinityAdapter struct {
	log      *zap.SugaredLogger
	binds    atomic.Uint64
	elevated atomic.Uint64
}

// NewAffinityAdapter creates an adapter with a no-op logger.
func NewAffinityAdapter() *AffinityAdapter {
	return NewAffinityAdapterWithLogger(nil)
}

// NewAffinityAdapterWithLogger creates an adapter logging each placement at debug level.
func NewAffinityAdapterWithLogger(log *zap.SugaredLogger) *AffinityAdapter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AffinityAdapter{log: log}
}

var _ api.Affinity = (*AffinityAdapter)(nil)

// Bind restricts the calling thread to cpus.
func (a *AffinityAdapter) Bind(cpus []int) error {
	if err := affinity.Bind(cpus...); err != nil {
		return err
	}
	a.binds.Add(1)
	a.log.Debugw("thread bound", "cpus", cpus)
	return nil
}

// SetRealtimePriority moves the calling thread to SCHED_FIFO at prio.
func (a *AffinityAdapter) SetRealtimePriority(prio int) error {
	if err := affinity.SetRealtimePriority(prio); err != nil {
		return err
	}
	a.elevated.Add(1)
	a.log.Debugw("thread priority elevated", "priority", prio)
	return nil
}

// Binds returns the number of successful Bind calls.
func (a *AffinityAdapter) Binds() uint64 { return a.binds.Load() }

// Elevations returns the number of successful SetRealtimePriority calls.
func (a *AffinityAdapter) Elevations() uint64 { return a.elevated.Load() }
