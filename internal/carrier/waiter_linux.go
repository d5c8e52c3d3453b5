//go:build linux
// +build linux

// File: internal/carrier/waiter_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// signalfd-backed waiter. The signal is blocked on the calling thread only,
// so a thread-directed delivery stays pending there until read.

package carrier

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/api"
)

type signalfdWaiter struct {
	fd   int
	sig  unix.Signal
	info unix.SignalfdSiginfo
}

// OpenSignalfd blocks sig on the calling thread and opens a signalfd for it.
// The mask is never restored: the thread is expected to exit while locked.
func OpenSignalfd(sig unix.Signal) (Waiter, error) {
	var set unix.Sigset_t
	sigsetAdd(&set, sig)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil); err != nil {
		return nil, api.OSError(api.ErrCodeSignal, "pthread_sigmask", err).
			WithContext("signal", sig.String())
	}
	fd, err := unix.Signalfd(-1, &set, unix.SFD_CLOEXEC)
	if err != nil {
		return nil, api.OSError(api.ErrCodeSignal, "signalfd", err).
			WithContext("signal", sig.String())
	}
	return &signalfdWaiter{fd: fd, sig: sig}, nil
}

func (w *signalfdWaiter) Wait() (uint32, error) {
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&w.info)), unsafe.Sizeof(w.info))
	for {
		n, err := unix.Read(w.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, api.OSError(api.ErrCodeSignal, "read signalfd", err)
		}
		if n != len(buf) {
			return 0, api.NewError(api.ErrCodeSignal, "short signalfd read").
				WithContext("bytes", n)
		}
		if unix.Signal(w.info.Signo) != w.sig {
			continue
		}
		return w.info.Overrun, nil
	}
}

func (w *signalfdWaiter) Close() error {
	if w.fd < 0 {
		return nil
	}
	fd := w.fd
	w.fd = -1
	if err := unix.Close(fd); err != nil {
		return api.OSError(api.ErrCodeSignal, "close signalfd", err)
	}
	return nil
}

// sigsetAdd is sigaddset(3); Sigset_t words are 32 or 64 bits wide
// depending on the architecture.
func sigsetAdd(set *unix.Sigset_t, sig unix.Signal) {
	bits := uint(unsafe.Sizeof(set.Val[0])) * 8
	n := uint(sig) - 1
	set.Val[n/bits] |= 1 << (n % bits)
}

func currentThread() api.ThreadID {
	return api.ThreadID(unix.Gettid())
}
