// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

/*
Package errorlog turns the errors returned or raised by request handlers into
a canonical JSON response and a single multi-line log record.

Handlers report failures in one of three shapes:

  - Status: a bare HTTP status code, e.g. return errorlog.Status(404)
  - *Bag: an explicit status/message/details triple with an optional nested
    exception in Err
  - any other error: treated as an exception. *Exception is the rich form
    carrying a stack trace, extra log-only fields and optionally a status
    and details of its own.

The Normalizer resolves each shape once into a NormalizedError:

	n := errorlog.New(errorlog.Options{Logger: func(record string) {
	    fmt.Fprintln(os.Stderr, record)
	}})

	r.Get("/users/{id}", n.Handle(func(w http.ResponseWriter, r *http.Request) error {
	    return &errorlog.Bag{Status: 402, Details: map[string]any{"plan": "free"}}
	}))

The client receives

	{"status":402,"message":"Payment Required","details":{"plan":"free"}}

and the sink receives

	GET /users/7 (402) - Payment Required
	  >>> {"plan":"free"}

Status codes that are not in the registry (see package httpstatus) are
answered with 500 and the message "Unknown status N". Stack traces and extra
fields only ever reach the sink, never the client.

Panics are handled by the Recoverer middleware, which converts the panic value
into an *Exception and feeds it through the same path.

# Thread Safety

A Normalizer holds no mutable state and may be shared by all requests. The
sink is called concurrently and must be safe for that; WriterSink serializes
writes to its io.Writer.
*/
package errorlog
