// File: cmd/stress-lb/flags.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Real-time signal range as exposed by glibc; 32 and 33 belong to the
// threading library.
const (
	sigRTMin = 34
	sigRTMax = 64
)

// parseDuration accepts a Go duration string or a bare number of seconds.
// The empty string means no limit.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	var d time.Duration
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		d = time.Duration(n) * time.Second
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", s)
	}
	if d < 0 {
		return 0, errors.Errorf("negative duration %q", s)
	}
	return d, nil
}

// parseSignal resolves SIGALRM, ALRM, SIGRTMIN+N, SIGRTMAX-N or a number.
// Signals the process needs for itself are refused.
func parseSignal(s string) (unix.Signal, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "SIG") {
		if n, err := strconv.Atoi(name); err == nil {
			return checkSignal(unix.Signal(n), s)
		}
		name = "SIG" + name
	}
	for base, v := range map[string]int{"SIGRTMIN": sigRTMin, "SIGRTMAX": sigRTMax} {
		if !strings.HasPrefix(name, base) {
			continue
		}
		rest := strings.TrimPrefix(name, base)
		if rest == "" {
			return checkSignal(unix.Signal(v), s)
		}
		off, err := strconv.Atoi(rest)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid signal %q", s)
		}
		return checkSignal(unix.Signal(v+off), s)
	}
	sig := unix.SignalNum(name)
	if sig == 0 {
		return 0, errors.Errorf("unknown signal %q", s)
	}
	return checkSignal(sig, s)
}

func checkSignal(sig unix.Signal, raw string) (unix.Signal, error) {
	switch {
	case sig < 1 || sig > sigRTMax:
		return 0, errors.Errorf("signal %q out of range", raw)
	case sig == 32 || sig == 33:
		return 0, errors.Errorf("signal %q is reserved by the threading library", raw)
	}
	switch sig {
	case unix.SIGKILL, unix.SIGSTOP, unix.SIGINT, unix.SIGTERM,
		unix.SIGSEGV, unix.SIGBUS, unix.SIGFPE, unix.SIGILL, unix.SIGURG:
		return 0, errors.Errorf("signal %q cannot carry timer expirations", raw)
	}
	return sig, nil
}
