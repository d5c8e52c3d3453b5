// File: runner/options.go
// Package runner defines functional options for the Runner.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package runner

import (
	"go.uber.org/zap"

	"github.com/momentics/stress-lb/api"
	"github.com/momentics/stress-lb/internal/carrier"
)

// Option customizes runner initialization.
type Option func(*Runner)

// WithAffinity replaces the thread placement backend.
func WithAffinity(aff api.Affinity) Option {
	return func(r *Runner) {
		r.aff = aff
	}
}

// WithControl sets the store receiving configuration and counters.
func WithControl(ctrl api.Control) Option {
	return func(r *Runner) {
		r.control = ctrl
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithCoreCount overrides the detected number of logical CPUs.
func WithCoreCount(n int) Option {
	return func(r *Runner) {
		r.cores = n
	}
}

// WithCarrierOptions passes options through to the timer carrier.
func WithCarrierOptions(opts ...carrier.Option) Option {
	return func(r *Runner) {
		r.carrierO = append(r.carrierO, opts...)
	}
}
