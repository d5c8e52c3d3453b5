// File: cmd/stress-lb/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// stress-lb keeps every core but one busy with spinning threads while a
// high-priority thread on the reserved core is woken by a periodic timer.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/adapters"
	"github.com/momentics/stress-lb/api"
	"github.com/momentics/stress-lb/control"
	"github.com/momentics/stress-lb/internal/logging"
	"github.com/momentics/stress-lb/runner"
)

type options struct {
	threadsPerCore int
	duration       string
	interval       string
	priority       int
	reservedCPU    int
	signal         string
	logLevel       string
	summaryJSON    bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "stress-lb",
		Short:        "Stress the scheduler's load balancer with spinning threads and a timer-driven real-time thread",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd.Context())
		},
	}
	def := runner.DefaultConfig()
	f := cmd.Flags()
	f.IntVarP(&o.threadsPerCore, "threads-per-core", "t", def.ThreadsPerCore, "spinning threads per non-reserved core")
	f.StringVarP(&o.duration, "duration", "d", "", "run length (Go duration or seconds); empty runs until interrupted")
	f.StringVarP(&o.interval, "interval", "i", def.Interval.String(), "timer period")
	f.IntVarP(&o.priority, "priority", "p", def.Priority, "SCHED_FIFO priority of the timer thread; 0 keeps the default class")
	f.IntVar(&o.reservedCPU, "reserved-cpu", def.ReservedCPU, "core reserved for the timer thread")
	f.StringVar(&o.signal, "signal", unix.SignalName(def.Signal), "expiry signal (SIGALRM, SIGRTMIN+N, or a number)")
	f.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.BoolVar(&o.summaryJSON, "summary-json", false, "print the run summary as JSON on stdout")
	return cmd
}

func (o *options) config() (*runner.Config, error) {
	cfg := runner.DefaultConfig()
	var err error
	if cfg.Duration, err = parseDuration(o.duration); err != nil {
		return nil, err
	}
	if cfg.Interval, err = parseDuration(o.interval); err != nil {
		return nil, err
	}
	if cfg.Signal, err = parseSignal(o.signal); err != nil {
		return nil, err
	}
	cfg.ThreadsPerCore = o.threadsPerCore
	cfg.Priority = o.priority
	cfg.ReservedCPU = o.reservedCPU
	return cfg, nil
}

func (o *options) run(ctx context.Context) error {
	log, err := logging.New(o.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := o.config()
	if err != nil {
		return err
	}
	r, err := runner.New(cfg,
		runner.WithLogger(log),
		runner.WithAffinity(adapters.NewAffinityAdapterWithLogger(log.Named("affinity"))))
	if err != nil {
		return err
	}

	log.Infow("starting stress run",
		"workers", r.Workers(), "threads_per_core", cfg.ThreadsPerCore,
		"reserved_cpu", cfg.ReservedCPU, "interval", cfg.Interval,
		"duration", cfg.Duration, "priority", cfg.Priority)
	sum, runErr := r.Run(ctx)
	if err := o.report(log, sum); err != nil {
		log.Warnw("summary not written", "error", err)
	}
	return runErr
}

func (o *options) report(log *zap.SugaredLogger, sum api.RunSummary) error {
	if !o.summaryJSON {
		log.Infow("run finished",
			"workers", sum.Workers, "carrier_tid", sum.CarrierTID,
			"notifications", sum.Notifications, "overruns", sum.Overruns,
			"elapsed", sum.Elapsed)
		return nil
	}
	b, err := control.EncodeSummary(sum)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		stop()
		os.Exit(1)
	}
}
