// File: runner/runner.go
// Package runner implements startup, steady state and ordered teardown of a
// stress run.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/multierr"

	"github.com/momentics/stress-lb/adapters"
	"github.com/momentics/stress-lb/affinity"
	"github.com/momentics/stress-lb/api"
	"github.com/momentics/stress-lb/internal/carrier"
	"github.com/momentics/stress-lb/internal/concurrency"
	"github.com/momentics/stress-lb/internal/logging"
)

var _ api.GracefulShutdown = (*Runner)(nil)

// New validates cfg and prepares a runner. A nil cfg selects DefaultConfig.
func New(cfg *Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r := &Runner{
		cfg:    cfg,
		stop:   concurrency.NewShutdownFlag(),
		stopCh: make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	r.log = logging.Nop(r.log)
	if r.aff == nil {
		r.aff = adapters.NewAffinityAdapterWithLogger(r.log.Named("affinity"))
	}
	if r.control == nil {
		r.control = adapters.NewControlAdapter()
	}
	if r.cores == 0 {
		r.cores = affinity.CoreCount()
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) validate() error {
	switch {
	case r.cores < 1:
		return api.NewError(api.ErrCodeInvalidArgument, "core count must be positive").
			WithContext("cores", r.cores)
	case r.cfg.ThreadsPerCore < 0:
		return api.NewError(api.ErrCodeInvalidArgument, "threads per core must not be negative").
			WithContext("threads_per_core", r.cfg.ThreadsPerCore)
	case r.cfg.Interval <= 0:
		return api.NewError(api.ErrCodeInvalidArgument, "timer interval must be positive").
			WithContext("interval", r.cfg.Interval)
	case r.cfg.Duration < 0:
		return api.NewError(api.ErrCodeInvalidArgument, "duration must not be negative").
			WithContext("duration", r.cfg.Duration)
	case r.cfg.Priority < 0 || r.cfg.Priority > affinity.MaxRealtimePriority:
		return api.NewError(api.ErrCodeInvalidArgument, "priority out of range").
			WithContext("priority", r.cfg.Priority)
	case r.cfg.ReservedCPU < 0 || r.cfg.ReservedCPU >= r.cores:
		return api.NewError(api.ErrCodeInvalidArgument, "reserved cpu outside the host").
			WithContext("reserved_cpu", r.cfg.ReservedCPU).
			WithContext("cores", r.cores)
	}
	return nil
}

// Workers returns the number of spin workers Run will start.
func (r *Runner) Workers() int {
	n, _ := concurrency.WorkerCount(r.cores, r.cfg.ThreadsPerCore)
	return n
}

// Run starts the workers and the timer carrier, blocks until the duration
// elapses, ctx is cancelled, Shutdown is called or a thread fails, then
// stops the carrier before the workers. The summary is filled in on every
// path.
func (r *Runner) Run(ctx context.Context) (api.RunSummary, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		e := api.NewError(api.ErrCodeInternal, "runner already started")
		e.Err = api.ErrAlreadyExists
		return api.RunSummary{}, e
	}
	r.running = true
	r.mu.Unlock()
	if r.stop.IsSet() {
		e := api.NewError(api.ErrCodeInternal, "shutdown requested before start")
		e.Err = api.ErrShutdown
		return api.RunSummary{}, e
	}

	start := time.Now()
	sum := api.RunSummary{
		ThreadsPerCore: r.cfg.ThreadsPerCore,
		ReservedCPU:    r.cfg.ReservedCPU,
		Interval:       r.cfg.Interval,
		Priority:       r.cfg.Priority,
	}
	workers, err := concurrency.WorkerCount(r.cores, r.cfg.ThreadsPerCore)
	if err != nil {
		return r.finish(sum, start, nil, nil, err)
	}
	sum.Workers = workers

	// Every spin worker holds a P; the carrier needs one more to run.
	if need := workers + 2; runtime.GOMAXPROCS(0) < need {
		prev := runtime.GOMAXPROCS(need)
		defer runtime.GOMAXPROCS(prev)
	}
	_ = r.control.SetConfig(map[string]any{
		"cores":            r.cores,
		"workers":          workers,
		"threads_per_core": r.cfg.ThreadsPerCore,
		"reserved_cpu":     r.cfg.ReservedCPU,
		"interval_ns":      r.cfg.Interval.Nanoseconds(),
		"duration_ns":      r.cfg.Duration.Nanoseconds(),
		"priority":         r.cfg.Priority,
		"signal":           int(r.cfg.Signal),
	})

	pool := concurrency.NewWorkerPool(r.aff, r.stop, r.log.Named("pool"))
	pool.Spawn(workers, affinity.Without(r.cores, r.cfg.ReservedCPU))
	r.log.Infow("spin workers started", "workers", workers, "reserved_cpu", r.cfg.ReservedCPU)

	opts := append([]carrier.Option{carrier.WithLogger(r.log.Named("carrier"))}, r.carrierO...)
	c, err := carrier.Start(carrier.Config{
		CPU:      r.cfg.ReservedCPU,
		Priority: r.cfg.Priority,
		Signal:   r.cfg.Signal,
		Interval: r.cfg.Interval,
	}, r.aff, r.stop, opts...)
	if err != nil {
		r.stop.Set()
		return r.finish(sum, start, nil, pool, multierr.Append(err, pool.Join()))
	}
	sum.CarrierTID = c.TID()
	r.control.RegisterDebugProbe("carrier.state", func() any { return c.State().String() })

	var deadline <-chan time.Time
	if r.cfg.Duration > 0 {
		t := time.NewTimer(r.cfg.Duration)
		defer t.Stop()
		deadline = t.C
	}
	select {
	case <-deadline:
		r.log.Infow("duration elapsed", "duration", r.cfg.Duration)
	case <-ctx.Done():
		r.log.Infow("run cancelled", "cause", ctx.Err())
	case <-r.stopCh:
		r.log.Infow("shutdown requested")
	case err := <-pool.Failed():
		r.log.Errorw("spin worker failed, stopping", "error", err)
	case <-c.Done():
		r.log.Errorw("timer carrier exited early, stopping")
	}

	r.stop.Set()
	errs := c.Join()
	errs = multierr.Append(errs, pool.Join())
	return r.finish(sum, start, c, pool, errs)
}

// finish records counters and publishes them through control.
func (r *Runner) finish(sum api.RunSummary, start time.Time, c *carrier.Carrier, pool *concurrency.WorkerPool, err error) (api.RunSummary, error) {
	sum.Elapsed = time.Since(start)
	if c != nil {
		sum.Notifications = c.Notifications()
		sum.Overruns = c.Overruns()
	}
	if pool != nil {
		sum.Increments = pool.Increments()
	}
	if err != nil {
		sum.Err = err.Error()
	}
	r.control.SetMetric("carrier.notifications", sum.Notifications)
	r.control.SetMetric("carrier.overruns", sum.Overruns)
	r.control.SetMetric("workers.joined", len(sum.Increments))
	r.control.SetMetric("elapsed_ns", sum.Elapsed.Nanoseconds())
	r.control.SetMetric("error_code", api.CodeOf(err).String())
	return sum, err
}

// Shutdown raises the shutdown flag and wakes Run. Safe to call repeatedly
// and from any goroutine.
func (r *Runner) Shutdown() error {
	r.stopOnce.Do(func() {
		r.stop.Set()
		close(r.stopCh)
	})
	return nil
}

// Control exposes the run's configuration and counters.
func (r *Runner) Control() api.Control { return r.control }
