// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for stress-lb.

package api

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Common errors used across the module.
var (
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotSupported    = fmt.Errorf("operation not supported")
	ErrAlreadyExists   = fmt.Errorf("resource already exists")
	ErrShutdown        = fmt.Errorf("shutdown in progress")
)

// ErrorCode classifies a failure of the stress run.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceCreation // timer_create / timer_settime refused
	ErrCodeAffinity         // sched_setaffinity refused or not honored
	ErrCodePriority         // real-time scheduling class refused
	ErrCodeSignal           // signal interception or wait failed
	ErrCodeJoin             // a spawned thread terminated abnormally
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeResourceCreation:
		return "resource creation"
	case ErrCodeAffinity:
		return "affinity"
	case ErrCodePriority:
		return "priority"
	case ErrCodeSignal:
		return "signal"
	case ErrCodeJoin:
		return "join"
	default:
		return "internal"
	}
}

// Error represents a structured error with code, context and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is matches ErrInvalidArgument for any error carrying ErrCodeInvalidArgument.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidArgument && e.Code == ErrCodeInvalidArgument
}

// Cause exposes the cause to github.com/pkg/errors.Cause.
func (e *Error) Cause() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// OSError builds an error for a failed system call. When cause is a
// unix.Errno its numeric value is recorded under "errno".
func OSError(code ErrorCode, op string, cause error) *Error {
	e := NewError(code, op+" failed").WithContext("op", op)
	e.Err = cause
	var errno unix.Errno
	if errors.As(cause, &errno) {
		e.WithContext("errno", int(errno))
	}
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal when err
// is not an *Error. A nil err yields ErrCodeOK.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
