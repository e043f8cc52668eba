// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package errorlog

import (
	"errors"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/phalanx/internal/logging"
	"github.com/tomtom215/phalanx/internal/metrics"
)

// ContentType is sent with every error response.
const ContentType = "application/json; charset=utf-8"

// HandlerFunc is an http.HandlerFunc that reports failure by returning an
// error instead of writing an error response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeError normalizes err, hands the record to the sink and writes the
// response. It is the terminal step for a failed request: it never panics and
// never returns an error. A failed write (typically a closed connection) is
// logged at debug level and otherwise ignored.
//
// An error without a stack trace is wrapped first, so the log shows where it
// was served from. A nil *Exception counts as a nil error.
func (n *Normalizer) ServeError(w http.ResponseWriter, r *http.Request, err error) {
	res := n.report(r, withStack(err, 1))

	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Content-Length", strconv.Itoa(len(res.Body)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(res.Status)
	if _, werr := w.Write(res.Body); werr != nil {
		logging.Ctx(r.Context()).Debug().
			Err(werr).
			Int("status", res.Status).
			Msg("Error response not delivered")
	}
}

// report normalizes err and records it without writing a response.
func (n *Normalizer) report(r *http.Request, err error) Result {
	if isNilException(err) {
		err = nil
	}
	res := n.Normalize(r.Method, r.URL.RequestURI(), err)
	n.sink(res.Record)
	metrics.RecordNormalizedError(res.Status, res.kind.String())
	return res
}

// Handle adapts h to http.HandlerFunc, routing a returned error through
// ServeError.
func (n *Normalizer) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil && !isNilException(err) {
			n.ServeError(w, r, err)
		}
	}
}

// Recoverer is middleware that converts a panic in next into an exception and
// serves it like a returned error. http.ErrAbortHandler is re-raised so the
// server can abort the connection as usual. When next panics after the
// response headers went out, the error is only logged.
func (n *Normalizer) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			if status := ww.Status(); status != 0 {
				res := n.report(r, fromPanic(v))
				logging.Ctx(r.Context()).Warn().
					Int("sent_status", status).
					Int("error_status", res.Status).
					Msg("Handler panicked after the response started")
				return
			}
			n.ServeError(ww, r, fromPanic(v))
		}()
		next.ServeHTTP(ww, r)
	})
}

// NotFound answers requests no route matched.
func (n *Normalizer) NotFound(w http.ResponseWriter, r *http.Request) {
	n.ServeError(w, r, Status(http.StatusNotFound))
}

// MethodNotAllowed answers requests whose route exists for other methods.
func (n *Normalizer) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	n.ServeError(w, r, Status(http.StatusMethodNotAllowed))
}
