// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package errorlog

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// maxStackDepth bounds the number of frames captured per exception.
const maxStackDepth = 32

// Field is a log-only key/value pair attached to an exception.
// Fields keep the order in which they were attached.
type Field struct {
	Key   string
	Value any
}

// Exception is an error with a captured stack trace. Besides its message it
// can carry a status and details, which are used like a Bag's, and extra
// fields, which are only ever logged.
//
// The With* helpers modify the receiver and return it for chaining; build
// the exception fully before returning it from a handler.
//
//	return errorlog.NewException("quota exceeded").
//	    WithStatus(http.StatusTooManyRequests).
//	    WithField("tenant", tenantID)
type Exception struct {
	name    string
	message string
	status  int
	details any
	fields  []Field
	stack   []string
	cause   error
}

// NewException creates an exception and captures the caller's stack.
func NewException(message string) *Exception {
	return &Exception{
		name:    "Exception",
		message: message,
		stack:   captureStack(1),
	}
}

// Errorf formats an exception message. A %w verb records the wrapped error
// as the exception's cause.
func Errorf(format string, args ...any) *Exception {
	err := fmt.Errorf(format, args...)
	e := &Exception{
		name:    "Exception",
		message: err.Error(),
		stack:   captureStack(1),
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		e.cause = u.Unwrap()
	}
	return e
}

// Wrap turns err into an exception with the caller's stack. An error that
// already is an *Exception is returned unchanged. Status, details and fields
// the wrapped error carries stay visible through the exception.
//
// Wrap(nil) returns nil. Handle and ServeError treat a nil *Exception like a
// nil error.
func Wrap(err error) *Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Exception); ok {
		return e
	}
	return wrapAt(err, 2)
}

// wrapAt wraps err with a stack whose first frame is skip levels above
// wrapAt's caller.
func wrapAt(err error, skip int) *Exception {
	return &Exception{
		name:    exceptionName(err),
		message: err.Error(),
		stack:   captureStack(skip),
		cause:   err,
	}
}

// WithName sets the name shown in front of the message in the log.
func (e *Exception) WithName(name string) *Exception {
	e.name = name
	return e
}

// WithStatus sets the HTTP status the exception resolves to.
func (e *Exception) WithStatus(code int) *Exception {
	e.status = code
	return e
}

// WithDetails sets the client-visible details.
func (e *Exception) WithDetails(details any) *Exception {
	e.details = details
	return e
}

// WithField attaches a log-only field. Setting an existing key replaces its
// value in place.
func (e *Exception) WithField(key string, value any) *Exception {
	for i := range e.fields {
		if e.fields[i].Key == key {
			e.fields[i].Value = value
			return e
		}
	}
	e.fields = append(e.fields, Field{Key: key, Value: value})
	return e
}

// Error implements error.
func (e *Exception) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.message
}

// Unwrap returns the cause, if any.
func (e *Exception) Unwrap() error {
	return e.cause
}

// ErrorName returns the exception's display name.
func (e *Exception) ErrorName() string {
	return e.name
}

// HTTPStatus returns the status set with WithStatus, else the status of the
// wrapped cause, else 0.
func (e *Exception) HTTPStatus() int {
	if e.status != 0 {
		return e.status
	}
	var sc statusCoder
	if e.cause != nil && errors.As(e.cause, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

// ErrorDetails returns the details set with WithDetails, else those of the
// wrapped cause.
func (e *Exception) ErrorDetails() any {
	if e.details != nil {
		return e.details
	}
	var d detailer
	if e.cause != nil && errors.As(e.cause, &d) {
		return d.ErrorDetails()
	}
	return nil
}

// ErrorFields returns a copy of the attached fields, or the wrapped cause's
// fields when none are attached.
func (e *Exception) ErrorFields() []Field {
	if len(e.fields) == 0 {
		var f fielder
		if e.cause != nil && errors.As(e.cause, &f) {
			return f.ErrorFields()
		}
		return nil
	}
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// StackTrace returns a copy of the captured frames, innermost first.
func (e *Exception) StackTrace() []string {
	if len(e.stack) == 0 {
		return nil
	}
	out := make([]string, len(e.stack))
	copy(out, e.stack)
	return out
}

// fromPanic converts a recovered panic value into an error. Values that
// already are handler errors pass through so that panic(errorlog.Status(403))
// behaves like returning it.
func fromPanic(v any) error {
	switch x := v.(type) {
	case Status:
		return x
	case *Bag:
		return x
	case *Exception:
		return x
	case error:
		return &Exception{
			name:    "panic",
			message: x.Error(),
			stack:   panicStack(),
			cause:   x,
		}
	default:
		return &Exception{
			name:    "panic",
			message: fmt.Sprint(v),
			stack:   panicStack(),
		}
	}
}

// panicStack captures the stack from inside a deferred recover, starting at
// the function that panicked.
func panicStack() []string {
	frames := captureStack(3)
	for len(frames) > 0 && strings.HasPrefix(frames[0], "runtime.") {
		frames = frames[1:]
	}
	return frames
}

// isNilException reports whether err is a typed-nil *Exception, as returned
// by Wrap(nil).
func isNilException(err error) bool {
	e, ok := err.(*Exception)
	return ok && e == nil
}

// withStack gives err a stack trace when it carries none. Status and *Bag
// values pass through unchanged. The first captured frame is skip levels
// above withStack's caller.
func withStack(err error, skip int) error {
	switch err.(type) {
	case nil, Status, *Bag, *Exception:
		return err
	}
	var st stackTracer
	if errors.As(err, &st) {
		return err
	}
	return wrapAt(err, skip+2)
}

// captureStack formats the current goroutine's stack. With skip 0 the first
// frame is the function calling captureStack.
func captureStack(skip int) []string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, n)
	for {
		f, more := frames.Next()
		out = append(out, fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	return out
}
