// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package middleware

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// accessTimeLayout matches JavaScript's Date.prototype.toISOString.
const accessTimeLayout = "2006-01-02T15:04:05.000Z"

// AccessLog returns middleware that writes one line per completed request
// to w. Lines from concurrent requests never interleave. A nil w disables
// the access log.
func AccessLog(w io.Writer) func(http.Handler) http.Handler {
	if w == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	var mu sync.Mutex
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(rw, r.ProtoMajor)

			defer func() {
				line := accessLine(r, ww, start, time.Since(start))
				mu.Lock()
				_, _ = io.WriteString(w, line)
				mu.Unlock()
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// accessLine renders
// :date[iso] [:remote-addr] ":method :url HTTP/:http-version" :status :res[content-length] :response-time - :id
func accessLine(r *http.Request, ww chimw.WrapResponseWriter, start time.Time, elapsed time.Duration) string {
	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}

	id := GetRequestID(r)
	if id == "" {
		id = "-"
	}

	return fmt.Sprintf("%s [%s] \"%s %s HTTP/%d.%d\" %d %s %.3f - %s\n",
		start.UTC().Format(accessTimeLayout),
		remoteHost(r.RemoteAddr),
		r.Method,
		r.URL.RequestURI(),
		r.ProtoMajor, r.ProtoMinor,
		status,
		contentLength(ww),
		float64(elapsed.Microseconds())/1000,
		id,
	)
}

// contentLength prefers the declared header and falls back to the bytes
// actually written.
func contentLength(ww chimw.WrapResponseWriter) string {
	if cl := ww.Header().Get("Content-Length"); cl != "" {
		return cl
	}
	if n := ww.BytesWritten(); n > 0 {
		return strconv.Itoa(n)
	}
	return "-"
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
