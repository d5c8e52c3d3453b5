// File: internal/carrier/carrier.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Carrier runs the thread that owns the timer's wake-ups. Lifecycle:
// starting → identity-published → awaiting-notifications → stopped.

package carrier

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/momentics/stress-lb/api"
	"github.com/momentics/stress-lb/internal/timer"
)

// Config describes the carrier thread.
type Config struct {
	CPU      int           // reserved core
	Priority int           // SCHED_FIFO priority; 0 keeps the default class
	Signal   unix.Signal   // reserved expiry signal
	Interval time.Duration // timer period and initial delay
}

// Option customizes a Carrier.
type Option func(*Carrier)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Carrier) { c.log = log }
}

// WithTimerFactory replaces the kernel timer constructor.
func WithTimerFactory(f api.TimerFactory) Option {
	return func(c *Carrier) { c.newTimer = f }
}

// WithWaiterOpener replaces the signalfd waiter.
func WithWaiterOpener(open WaiterOpener) Option {
	return func(c *Carrier) { c.openWaiter = open }
}

// WithThreadID replaces the thread identity lookup.
func WithThreadID(fn func() api.ThreadID) Option {
	return func(c *Carrier) { c.gettid = fn }
}

// identity is the one-shot handoff from the carrier thread to Start.
type identity struct {
	tid api.ThreadID
	err error
}

// Carrier is the thread that receives the timer's thread-directed signal.
type Carrier struct {
	cfg  Config
	aff  api.Affinity
	stop api.ShutdownObserver
	log  *zap.SugaredLogger

	newTimer   api.TimerFactory
	openWaiter WaiterOpener
	gettid     func() api.ThreadID

	tid   api.ThreadID
	timer api.ThreadTimer

	state         atomic.Int32
	notifications atomic.Uint64
	overruns      atomic.Uint64

	done chan struct{}
	err  error
}

// Start spawns the carrier thread, waits for it to publish its identity and
// arms a timer against that identity. On any failure the thread has exited
// and every resource it acquired has been released when Start returns.
func Start(cfg Config, aff api.Affinity, stop api.ShutdownObserver, opts ...Option) (*Carrier, error) {
	if cfg.Interval <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "carrier: interval must be positive").
			WithContext("interval", cfg.Interval)
	}
	if cfg.Signal == 0 {
		cfg.Signal = timer.DefaultSignal
	}
	c := &Carrier{
		cfg:        cfg,
		aff:        aff,
		stop:       stop,
		newTimer:   timer.Factory(timer.SystemOps(), cfg.Signal),
		openWaiter: OpenSignalfd,
		gettid:     currentThread,
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}

	ready := make(chan identity, 1)
	armed := make(chan api.ThreadTimer, 1)
	go c.run(ready, armed)

	id := <-ready
	if id.err != nil {
		<-c.done
		return nil, id.err
	}
	if !id.tid.Valid() {
		armed <- nil
		<-c.done
		return nil, api.NewError(api.ErrCodeInternal, "carrier: published an invalid thread id").
			WithContext("tid", id.tid)
	}

	tm, err := c.newTimer(id.tid, cfg.Interval)
	if err != nil {
		armed <- nil
		<-c.done
		return nil, err
	}
	c.tid = id.tid
	c.timer = tm
	armed <- tm

	c.log.Infow("timer carrier armed",
		"tid", id.tid, "cpu", cfg.CPU, "interval", cfg.Interval,
		"signal", cfg.Signal.String(), "priority", cfg.Priority)
	return c, nil
}

// run is the body of the carrier goroutine. It locks its OS thread and never
// unlocks it: the thread's signal mask and affinity die with it.
func (c *Carrier) run(ready chan<- identity, armed <-chan api.ThreadTimer) {
	published := false
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			c.err = multierr.Append(c.err, api.NewError(api.ErrCodeJoin, "timer carrier panicked").
				WithContext("panic", fmt.Sprint(r)))
		}
		c.state.Store(int32(api.CarrierStopped))
		if !published {
			ready <- identity{err: c.err}
		}
	}()

	runtime.LockOSThread()
	c.err = c.serve(ready, armed, &published)
}

func (c *Carrier) serve(ready chan<- identity, armed <-chan api.ThreadTimer, published *bool) (err error) {
	c.state.Store(int32(api.CarrierStarting))

	ic, err := intercept(c.cfg.Signal, c.log)
	if err != nil {
		return err
	}
	defer ic.release()

	w, err := c.openWaiter(c.cfg.Signal)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	if err := c.aff.Bind([]int{c.cfg.CPU}); err != nil {
		return err
	}
	if c.cfg.Priority > 0 {
		if err := c.aff.SetRealtimePriority(c.cfg.Priority); err != nil {
			return err
		}
	}

	tid := c.gettid()
	c.state.Store(int32(api.CarrierIdentityPublished))
	*published = true
	ready <- identity{tid: tid}

	tm := <-armed
	if tm == nil {
		return nil
	}
	// Runs before the waiter closes, so the timer never outlives the thread.
	defer func() {
		err = multierr.Append(err, tm.Close())
	}()

	return c.await(w, tid)
}

// await consumes expirations until one is observed after shutdown.
func (c *Carrier) await(w Waiter, tid api.ThreadID) error {
	c.state.Store(int32(api.CarrierAwaiting))
	warn := rate.NewLimiter(rate.Every(time.Second), 1)
	for {
		overrun, err := w.Wait()
		if err != nil {
			return err
		}
		c.notifications.Add(1)
		if overrun > 0 {
			c.overruns.Add(uint64(overrun))
			if warn.Allow() {
				c.log.Warnw("timer expirations coalesced", "tid", tid, "overrun", overrun)
			}
		}
		if got := c.gettid(); got != tid {
			return api.NewError(api.ErrCodeSignal, "carrier woke on a foreign thread").
				WithContext("tid", tid).
				WithContext("current", got)
		}
		if c.stop.IsSet() {
			return nil
		}
	}
}

// Done is closed once the carrier thread has exited.
func (c *Carrier) Done() <-chan struct{} { return c.done }

// Join waits for the carrier thread to stop and releases the timer if the
// thread did not. There is no timeout: the thread notices shutdown at the
// next expiration.
func (c *Carrier) Join() error {
	<-c.done
	err := c.err
	if c.timer != nil {
		err = multierr.Append(err, c.timer.Close())
	}
	return err
}

// TID returns the carrier thread's identity.
func (c *Carrier) TID() api.ThreadID { return c.tid }

// State returns the current lifecycle state.
func (c *Carrier) State() api.CarrierState { return api.CarrierState(c.state.Load()) }

// Notifications returns the number of wake-ups consumed so far.
func (c *Carrier) Notifications() uint64 { return c.notifications.Load() }

// Overruns returns the number of expirations folded into earlier wake-ups.
func (c *Carrier) Overruns() uint64 { return c.overruns.Load() }
