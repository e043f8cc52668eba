// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package errorlog

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/phalanx/internal/httpstatus"
	"github.com/tomtom215/phalanx/internal/logging"
)

// Sink receives one fully formatted log record per handled error.
type Sink func(record string)

// DefaultSink writes the record at error level through the process-wide
// logger, which writes to stderr unless configured otherwise.
func DefaultSink(record string) {
	logging.Error().Str("component", "errorlog").Msg(record)
}

// WriterSink returns a Sink that writes each record followed by a newline
// to w. Writes are serialized. A record that cannot be written goes to the
// process logger instead.
func WriterSink(w io.Writer) Sink {
	var mu sync.Mutex
	return func(record string) {
		mu.Lock()
		defer mu.Unlock()
		if _, err := io.WriteString(w, record+"\n"); err != nil {
			logging.Err(err).Str("component", "errorlog").Str("record", record).Msg("Error log write failed")
		}
	}
}

// Options configures a Normalizer.
type Options struct {
	// Logger receives the log records. Nil selects DefaultSink.
	Logger Sink
}

// Normalizer maps handler errors to responses and log records.
// It is immutable after New and safe for concurrent use.
type Normalizer struct {
	sink Sink
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	sink := opts.Logger
	if sink == nil {
		sink = DefaultSink
	}
	return &Normalizer{sink: sink}
}

// NormalizedError is the canonical form of a handler error. Status is a
// registered status code and Message is never empty.
type NormalizedError struct {
	Status  int
	Message string
	Details any
}

// Result is everything derived from one handler error.
type Result struct {
	NormalizedError

	// Reason is the registry phrase for Status.
	Reason string
	// Body is the JSON response body.
	Body []byte
	// Record is the log record handed to the sink.
	Record string

	kind rawKind
}

// responseBody fixes the key order of the JSON body.
type responseBody struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Normalize derives the response and log record for err without writing
// either. It is a pure function of its arguments.
func (n *Normalizer) Normalize(method, url string, err error) Result {
	r := classify(err)

	candidate := r.status
	if candidate == 0 && r.kind != kindStatus {
		candidate = http.StatusInternalServerError
	}

	status := candidate
	reason, known := httpstatus.Reason(candidate)
	if !known {
		status = http.StatusInternalServerError
		reason, _ = httpstatus.Reason(status)
	}

	message := r.message
	if message == "" && !known {
		message = fmt.Sprintf("Unknown status %d", candidate)
	}
	if message == "" && r.exc != nil {
		message = r.exc.Error()
	}
	if message == "" {
		message = reason
	}

	var details []byte
	if r.details != nil {
		line, derr := marshalLine(r.details)
		switch {
		case derr == nil && string(line) == "null":
			// A typed nil, such as a nil map, means no details.
		case derr == nil:
			details = line
		default:
			logging.Debug().Err(derr).Str("component", "errorlog").Msg("Dropping unserializable details")
		}
	}

	var fields []byte
	if r.exc != nil {
		line, ferr := fieldsLine(exceptionFields(r.exc))
		if ferr != nil {
			logging.Debug().Err(ferr).Str("component", "errorlog").Msg("Dropping unserializable exception fields")
		}
		fields = line
	}

	res := Result{
		Reason: reason,
		Record: record(method, url, status, message, details, fields, r.exc),
		kind:   r.kind,
	}
	res.Status = status
	res.Message = message
	if details != nil {
		res.Details = r.details
	}
	res.Body = encodeBody(status, message, details)
	return res
}

// encodeBody renders the response body. details must be valid JSON or nil.
func encodeBody(status int, message string, details []byte) []byte {
	body, err := json.Marshal(responseBody{Status: status, Message: message, Details: details})
	if err != nil {
		body, _ = json.Marshal(responseBody{Status: status, Message: message})
	}
	return body
}
