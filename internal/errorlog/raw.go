// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package errorlog

import (
	"errors"
	"fmt"
	"net/http"
)

// Status is a bare HTTP status code reported as an error.
//
//	return errorlog.Status(http.StatusBadRequest)
type Status int

// Error implements error.
func (s Status) Error() string {
	return fmt.Sprintf("status %d", int(s))
}

// HTTPStatus returns the code itself.
func (s Status) HTTPStatus() int {
	return int(s)
}

// Bag is an explicit error description. Zero values mean "not supplied":
// Status 0 falls back to 500, an empty Message falls back to the nested
// exception's message or the status reason phrase, and a nil Details is
// omitted from the response.
//
// Err is an optional nested exception. Its message, extra fields and stack
// trace are logged but never sent to the client.
type Bag struct {
	Status  int
	Message string
	Details any
	Err     error
}

// Error implements error.
func (b *Bag) Error() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Err != nil && !isNilException(b.Err):
		return b.Err.Error()
	case b.Status != 0:
		return Status(b.Status).Error()
	default:
		return http.StatusText(http.StatusInternalServerError)
	}
}

// Unwrap returns the nested exception.
func (b *Bag) Unwrap() error {
	return b.Err
}

// HTTPStatus returns the explicit status, or 0 when none was supplied.
func (b *Bag) HTTPStatus() int {
	return b.Status
}

// ErrorDetails returns the client-visible details.
func (b *Bag) ErrorDetails() any {
	return b.Details
}

// Optional capabilities of exception values. Foreign error types can
// implement any subset of them to take part in normalization.
type (
	statusCoder interface {
		HTTPStatus() int
	}
	detailer interface {
		ErrorDetails() any
	}
	fielder interface {
		ErrorFields() []Field
	}
	stackTracer interface {
		StackTrace() []string
	}
	namer interface {
		ErrorName() string
	}
)

// rawKind tags the shape a handler error arrived in.
type rawKind int

const (
	kindStatus rawKind = iota
	kindBag
	kindException
)

// String returns the metrics label for the kind.
func (k rawKind) String() string {
	switch k {
	case kindStatus:
		return "status"
	case kindBag:
		return "bag"
	default:
		return "exception"
	}
}

// raw is a handler error resolved into its tagged variant.
type raw struct {
	kind rawKind

	// status is the candidate status; 0 means none was supplied.
	status int
	// message is the explicit message, if any.
	message string
	details any

	// exc is the exception whose fields and stack get logged, if any.
	exc error
}

// classify resolves err into a raw variant without modifying it.
// A nil error, including a nil *Exception, is a request nothing handled and
// classifies as Status(404).
func classify(err error) raw {
	if isNilException(err) {
		err = nil
	}
	switch e := err.(type) {
	case nil:
		return raw{kind: kindStatus, status: http.StatusNotFound}
	case Status:
		return raw{kind: kindStatus, status: int(e)}
	case *Bag:
		if e == nil {
			return raw{kind: kindBag}
		}
		r := raw{
			kind:    kindBag,
			status:  e.Status,
			message: e.Message,
			details: e.Details,
			exc:     e.Err,
		}
		if isNilException(r.exc) {
			r.exc = nil
		}
		return r
	}

	r := raw{kind: kindException, message: err.Error(), exc: err}
	var sc statusCoder
	if errors.As(err, &sc) {
		r.status = sc.HTTPStatus()
	}
	var d detailer
	if errors.As(err, &d) {
		r.details = d.ErrorDetails()
	}
	return r
}

// exceptionName returns the display name used in the log's exception block.
func exceptionName(err error) string {
	var n namer
	if errors.As(err, &n) {
		if name := n.ErrorName(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", err)
}

// exceptionFields returns the log-only extra fields carried by err.
func exceptionFields(err error) []Field {
	var f fielder
	if errors.As(err, &f) {
		return f.ErrorFields()
	}
	return nil
}

// exceptionStack returns the stack trace carried by err.
func exceptionStack(err error) []string {
	var st stackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	return nil
}
