// File: internal/carrier/intercept.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide interception of the reserved timer signal.

package carrier

import (
	"os"
	"os/signal"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/momentics/stress-lb/api"
)

var (
	interceptMu sync.Mutex
	intercepted = make(map[unix.Signal]bool)
)

// interception routes process-directed instances of the reserved signal to
// a drain goroutine so they never reach a default action. Thread-directed
// expirations stay pending on the carrier thread, which blocks the signal.
type interception struct {
	sig  unix.Signal
	ch   chan os.Signal
	done chan struct{}
}

// intercept takes exclusive ownership of sig for the process. Stray
// deliveries are logged at most once per second.
func intercept(sig unix.Signal, log *zap.SugaredLogger) (*interception, error) {
	interceptMu.Lock()
	defer interceptMu.Unlock()
	if intercepted[sig] {
		return nil, api.OSError(api.ErrCodeSignal, "signal interception", api.ErrAlreadyExists).
			WithContext("signal", sig.String())
	}
	intercepted[sig] = true

	ic := &interception{
		sig:  sig,
		ch:   make(chan os.Signal, 16),
		done: make(chan struct{}),
	}
	signal.Notify(ic.ch, sig)

	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	go func() {
		for {
			select {
			case s := <-ic.ch:
				if limiter.Allow() {
					log.Warnw("stray process-directed timer signal ignored", "signal", s.String())
				}
			case <-ic.done:
				return
			}
		}
	}()
	return ic, nil
}

// release gives up ownership of the signal.
func (ic *interception) release() {
	signal.Stop(ic.ch)
	close(ic.done)

	interceptMu.Lock()
	delete(intercepted, ic.sig)
	interceptMu.Unlock()
}
